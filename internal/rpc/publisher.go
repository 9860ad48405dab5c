package rpc

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/tx"
)

// TransactionEvent is the payload broadcast for every applied transaction.
type TransactionEvent struct {
	Hash     string          `json:"hash"`
	TxType   string          `json:"tx_type"`
	Account  string          `json:"account"`
	Result   string          `json:"result"`
	Tx       json.RawMessage `json:"tx"`
	Metadata *tx.Metadata    `json:"metadata,omitempty"`
}

// Publisher fans applied-transaction events out to websocket subscribers.
// Slow subscribers are dropped rather than allowed to stall the submit path.
type Publisher struct {
	logger *zap.Logger

	mu    sync.RWMutex
	conns map[*wsConn]struct{}
}

func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{
		logger: logger,
		conns:  make(map[*wsConn]struct{}),
	}
}

// PublishTransaction broadcasts one event to every subscriber.
func (p *Publisher) PublishTransaction(event *TransactionEvent) {
	if event == nil {
		return
	}

	data, err := json.Marshal(map[string]any{
		"type":        "transaction",
		"transaction": event,
	})
	if err != nil {
		p.logger.Error("failed to marshal transaction event", zap.Error(err))
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for conn := range p.conns {
		select {
		case conn.send <- data:
		default:
			// Buffer full; the connection's writer will be closed by
			// its own read loop when it notices.
			p.logger.Warn("dropping event for slow subscriber")
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}

func (p *Publisher) add(conn *wsConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[conn] = struct{}{}
}

func (p *Publisher) remove(conn *wsConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.conns, conn)
}
