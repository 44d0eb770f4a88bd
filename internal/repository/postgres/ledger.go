package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// LedgerRepository is a PostgreSQL implementation of repository.LedgerRepository.
// Unlike the other repositories it owns a *sql.DB: each Post is a short
// transaction so the wallet increment and the appended ledger row commit
// together or not at all.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Post atomically applies one signed transaction to the owner's wallet.
// The balance update is a single SQL increment, so concurrent posts to the
// same wallet serialize on the row and the balance identity holds.
func (r *LedgerRepository) Post(ctx context.Context, ownerType domain.WalletOwnerType, ownerID string, txn *domain.Transaction) (*domain.Wallet, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	wallet := &domain.Wallet{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Currency:  txn.Currency,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO wallets (id, owner_type, owner_id, currency, balance)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_type, owner_id, currency)
		DO UPDATE SET balance = wallets.balance + EXCLUDED.balance
		RETURNING id, balance
	`, txn.WalletID, ownerType, ownerID, txn.Currency, txn.Amount).Scan(&wallet.ID, &wallet.Balance)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, wallet_id, action, reason, amount, currency, trip_id, operator_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		txn.ID,
		wallet.ID,
		txn.Action,
		txn.Reason,
		txn.Amount,
		txn.Currency,
		nullString(txn.TripID),
		nullString(txn.OperatorID),
		txn.Status,
		txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetWallet retrieves the wallet for (ownerType, ownerID, currency).
func (r *LedgerRepository) GetWallet(ctx context.Context, ownerType domain.WalletOwnerType, ownerID, currency string) (*domain.Wallet, error) {
	query := `
		SELECT id, owner_type, owner_id, currency, balance FROM wallets
		WHERE owner_type = $1 AND owner_id = $2 AND currency = $3
	`

	var wallet domain.Wallet
	err := r.db.QueryRowContext(ctx, query, ownerType, ownerID, currency).Scan(
		&wallet.ID,
		&wallet.OwnerType,
		&wallet.OwnerID,
		&wallet.Currency,
		&wallet.Balance,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &wallet, nil
}

// ListWallets retrieves all wallets of one owner across currencies.
func (r *LedgerRepository) ListWallets(ctx context.Context, ownerType domain.WalletOwnerType, ownerID string) ([]*domain.Wallet, error) {
	query := `
		SELECT id, owner_type, owner_id, currency, balance FROM wallets
		WHERE owner_type = $1 AND owner_id = $2 ORDER BY currency
	`
	rows, err := r.db.QueryContext(ctx, query, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		var wallet domain.Wallet
		if err := rows.Scan(&wallet.ID, &wallet.OwnerType, &wallet.OwnerID, &wallet.Currency, &wallet.Balance); err != nil {
			return nil, err
		}
		wallets = append(wallets, &wallet)
	}
	return wallets, rows.Err()
}

// ListTransactions retrieves the ledger entries of a wallet, newest first.
func (r *LedgerRepository) ListTransactions(ctx context.Context, walletID string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, wallet_id, action, reason, amount, currency, trip_id, operator_id, status, created_at
		FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var tripID, operatorID sql.NullString
		if err := rows.Scan(
			&txn.ID,
			&txn.WalletID,
			&txn.Action,
			&txn.Reason,
			&txn.Amount,
			&txn.Currency,
			&tripID,
			&operatorID,
			&txn.Status,
			&txn.CreatedAt,
		); err != nil {
			return nil, err
		}
		if tripID.Valid {
			txn.TripID = tripID.String
		}
		if operatorID.Valid {
			txn.OperatorID = operatorID.String
		}
		txns = append(txns, &txn)
	}
	return txns, rows.Err()
}
