package repository

import (
	"context"

	"dispatch/internal/domain"
)

// LedgerRepository defines the persistence operations for wallets and
// their transaction log.
type LedgerRepository interface {
	// Post atomically applies one signed transaction to the wallet owned
	// by (ownerType, ownerID, txn.Currency): the wallet is created seeded
	// with the amount if it does not exist, otherwise its balance is
	// incremented, and the transaction row is appended. Both writes happen
	// or neither does. Returns the wallet with its updated balance.
	Post(ctx context.Context, ownerType domain.WalletOwnerType, ownerID string, txn *domain.Transaction) (*domain.Wallet, error)

	// GetWallet retrieves the wallet for (ownerType, ownerID, currency).
	// Returns ErrNotFound when no wallet exists yet.
	GetWallet(ctx context.Context, ownerType domain.WalletOwnerType, ownerID, currency string) (*domain.Wallet, error)

	// ListWallets retrieves all wallets of one owner across currencies.
	ListWallets(ctx context.Context, ownerType domain.WalletOwnerType, ownerID string) ([]*domain.Wallet, error)

	// ListTransactions retrieves the ledger entries of a wallet, newest
	// first.
	ListTransactions(ctx context.Context, walletID string) ([]*domain.Transaction, error)
}
