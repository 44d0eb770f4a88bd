package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// Ledger is the contract the lifecycle and settlement code posts money
// through. Amounts are signed at the call site: recharges positive,
// deductions negative. The action is a bookkeeping label only.
type Ledger interface {
	Post(ctx context.Context, req PostRequest) (*domain.Wallet, error)
	Balance(ctx context.Context, ownerType domain.WalletOwnerType, ownerID, currency string) (float64, error)
}

// PostRequest contains the parameters for one ledger posting.
type PostRequest struct {
	OwnerType  domain.WalletOwnerType
	OwnerID    string // empty for the platform wallet
	Currency   string
	Action     domain.TransactionAction
	Reason     domain.TransactionReason
	Amount     float64 // signed
	TripID     string  // optional
	OperatorID string  // optional
}

// WalletService is the wallet ledger: an append-only transaction log plus
// a per-(owner, currency) balance projection. It is the sole place money
// changes hands.
type WalletService struct {
	ledgerRepo repository.LedgerRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(ledgerRepo repository.LedgerRepository) *WalletService {
	return &WalletService{ledgerRepo: ledgerRepo}
}

// Ensure WalletService implements Ledger.
var _ Ledger = (*WalletService)(nil)

// Post applies one signed transaction to the owner's wallet, creating the
// wallet on first use. The repository guarantees the balance increment and
// the appended ledger row commit together, so no partial update is ever
// observable and balance always equals previousBalance + amount.
func (s *WalletService) Post(ctx context.Context, req PostRequest) (*domain.Wallet, error) {
	if req.Currency == "" {
		return nil, ErrInvalidCurrency
	}
	if req.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	if req.Action == domain.ActionRecharge && req.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	if req.Action == domain.ActionDeduct && req.Amount > 0 {
		return nil, ErrInvalidAmount
	}

	txn := &domain.Transaction{
		ID:         uuid.New().String(),
		WalletID:   uuid.New().String(), // used only when the wallet is created
		Action:     req.Action,
		Reason:     req.Reason,
		Amount:     req.Amount,
		Currency:   req.Currency,
		TripID:     req.TripID,
		OperatorID: req.OperatorID,
		Status:     domain.TransactionStatusDone,
		CreatedAt:  time.Now(),
	}

	return s.ledgerRepo.Post(ctx, req.OwnerType, req.OwnerID, txn)
}

// Balance returns the owner's balance in the given currency. An owner
// with no wallet yet has a zero balance.
func (s *WalletService) Balance(ctx context.Context, ownerType domain.WalletOwnerType, ownerID, currency string) (float64, error) {
	wallet, err := s.ledgerRepo.GetWallet(ctx, ownerType, ownerID, currency)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return wallet.Balance, nil
}

// Wallets returns all wallets of one owner.
func (s *WalletService) Wallets(ctx context.Context, ownerType domain.WalletOwnerType, ownerID string) ([]*domain.Wallet, error) {
	return s.ledgerRepo.ListWallets(ctx, ownerType, ownerID)
}

// Transactions returns the ledger entries of a wallet, newest first.
func (s *WalletService) Transactions(ctx context.Context, walletID string) ([]*domain.Transaction, error) {
	return s.ledgerRepo.ListTransactions(ctx, walletID)
}
