package tx

import (
	"fmt"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
)

// GenesisAccount funds one native-currency account at first boot. Value
// operations probe the caller's native account, and native accounts are
// otherwise only created by credits inside those same operations, so a fresh
// store needs at least one seeded account before any pool or token flow can
// run.
type GenesisAccount struct {
	Account Address
	Balance uint64
}

// SeedGenesis inserts the configured native accounts into the view. Accounts
// that already exist are left untouched, so reseeding an initialized store
// never clobbers live balances.
func SeedGenesis(view LedgerView, accounts []GenesisAccount) error {
	for i, ga := range accounts {
		if ga.Account.IsZero() {
			return fmt.Errorf("genesis account %d: address is zero", i)
		}
		if ga.Balance == 0 {
			return fmt.Errorf("genesis account %d (%s): balance is zero", i, ga.Account)
		}

		k := keylet.Account(ga.Account.Bytes())
		exists, err := view.Exists(k)
		if err != nil {
			return fmt.Errorf("genesis account %s: %w", ga.Account, err)
		}
		if exists {
			continue
		}

		raw, err := state.SerializeAccount(&state.Account{Balance: ga.Balance})
		if err != nil {
			return fmt.Errorf("genesis account %s: %w", ga.Account, err)
		}
		if err := view.Insert(k, raw); err != nil {
			return fmt.Errorf("genesis account %s: %w", ga.Account, err)
		}
	}
	return nil
}
