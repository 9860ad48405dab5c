// Package historydb records applied transactions in a relational store so
// the RPC surface can answer per-account history queries without walking
// account store state.
package historydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction hash is unknown.
var ErrNotFound = errors.New("transaction not found")

// TransactionInfo is one recorded transaction.
type TransactionInfo struct {
	Seq       int64
	Hash      [32]byte
	Account   [32]byte
	TxType    string
	Result    string
	Applied   bool
	RawTxn    []byte
	TxnMeta   []byte
	AppliedAt int64
}

// DB wraps the sqlite history file.
type DB struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	hash       BLOB NOT NULL,
	account    BLOB NOT NULL,
	tx_type    TEXT NOT NULL,
	status     TEXT NOT NULL,
	applied    INTEGER NOT NULL,
	raw_txn    BLOB NOT NULL,
	txn_meta   BLOB,
	applied_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account, seq);
CREATE INDEX IF NOT EXISTS idx_transactions_hash ON transactions(hash, seq);
`

// Open creates or opens the history database under dir.
func Open(dir string) (*DB, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// sqlite allows a single writer; the recorder is the only one.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Record stores one processed transaction. Rejected transactions are
// recorded too, with Applied false, so failures remain auditable.
func (d *DB) Record(ctx context.Context, info *TransactionInfo) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO transactions (hash, account, tx_type, status, applied, raw_txn, txn_meta, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.Hash[:], info.Account[:], info.TxType, info.Result,
		boolToInt(info.Applied), info.RawTxn, info.TxnMeta, info.AppliedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to record transaction: %w", err)
	}
	return res.LastInsertId()
}

// ByHash looks up one transaction. A byte-identical resubmission shares its
// hash with the earlier rows; the newest record wins.
func (d *DB) ByHash(ctx context.Context, hash [32]byte) (*TransactionInfo, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT seq, hash, account, tx_type, status, applied, raw_txn, txn_meta, applied_at
		 FROM transactions WHERE hash = ? ORDER BY seq DESC LIMIT 1`, hash[:])

	info, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return info, err
}

// AccountTx returns an account's transactions, newest first. A non-zero
// marker resumes below that sequence; the returned marker is zero when the
// history is exhausted.
func (d *DB) AccountTx(ctx context.Context, account [32]byte, limit int, marker int64) ([]*TransactionInfo, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	query := `SELECT seq, hash, account, tx_type, status, applied, raw_txn, txn_meta, applied_at
		 FROM transactions WHERE account = ?`
	args := []any{account[:]}
	if marker > 0 {
		query += ` AND seq < ?`
		args = append(args, marker)
	}
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query account transactions: %w", err)
	}
	defer rows.Close()

	var out []*TransactionInfo
	for rows.Next() {
		info, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var next int64
	if len(out) > limit {
		out = out[:limit]
		next = out[len(out)-1].Seq
	}
	return out, next, nil
}

// Count reports the number of recorded transactions.
func (d *DB) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*TransactionInfo, error) {
	var info TransactionInfo
	var hash, account []byte
	var applied int

	err := row.Scan(&info.Seq, &hash, &account, &info.TxType, &info.Result,
		&applied, &info.RawTxn, &info.TxnMeta, &info.AppliedAt)
	if err != nil {
		return nil, err
	}
	copy(info.Hash[:], hash)
	copy(info.Account[:], account)
	info.Applied = applied != 0
	return &info, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
