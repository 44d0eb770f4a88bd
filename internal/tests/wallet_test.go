package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

func TestWalletPost_CreatesWalletOnFirstUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledgerRepo := NewMockLedgerRepository()
	walletService := service.NewWalletService(ledgerRepo)

	wallet, err := walletService.Post(ctx, service.PostRequest{
		OwnerType: domain.OwnerRider,
		OwnerID:   testRiderID,
		Currency:  testCurrency,
		Action:    domain.ActionRecharge,
		Reason:    domain.ReasonBankPayment,
		Amount:    25,
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if wallet.Balance != 25 {
		t.Errorf("expected balance 25, got %v", wallet.Balance)
	}
}

func TestWalletPost_RejectsSignMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	walletService := service.NewWalletService(NewMockLedgerRepository())

	cases := []service.PostRequest{
		{OwnerType: domain.OwnerRider, OwnerID: testRiderID, Currency: testCurrency, Action: domain.ActionRecharge, Amount: -5},
		{OwnerType: domain.OwnerRider, OwnerID: testRiderID, Currency: testCurrency, Action: domain.ActionDeduct, Amount: 5},
		{OwnerType: domain.OwnerRider, OwnerID: testRiderID, Currency: testCurrency, Action: domain.ActionRecharge, Amount: 0},
	}
	for _, req := range cases {
		if _, err := walletService.Post(ctx, req); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("amount %v action %s: expected ErrInvalidAmount, got %v", req.Amount, req.Action, err)
		}
	}

	if _, err := walletService.Post(ctx, service.PostRequest{
		OwnerType: domain.OwnerRider, OwnerID: testRiderID, Action: domain.ActionRecharge, Amount: 5,
	}); !errors.Is(err, service.ErrInvalidCurrency) {
		t.Errorf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestWalletBalance_AbsentWalletIsZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	walletService := service.NewWalletService(NewMockLedgerRepository())

	balance, err := walletService.Balance(ctx, domain.OwnerRider, "rider-unknown", testCurrency)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected 0 balance, got %v", balance)
	}
}

// Interleaved concurrent postings: the final balance equals the sum of
// all amounts and every transaction is retained.
func TestWalletPost_ConcurrentBalanceIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledgerRepo := NewMockLedgerRepository()
	walletService := service.NewWalletService(ledgerRepo)

	const posters = 50
	var wg sync.WaitGroup
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := service.PostRequest{
				OwnerType: domain.OwnerDriver,
				OwnerID:   testDriverID,
				Currency:  testCurrency,
				Action:    domain.ActionRecharge,
				Reason:    domain.ReasonOrderFee,
				Amount:    10,
			}
			if i%2 == 1 {
				req.Action = domain.ActionDeduct
				req.Amount = -4
			}
			if _, err := walletService.Post(ctx, req); err != nil {
				t.Errorf("post failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// 25 recharges of +10 and 25 deductions of -4.
	want := 25.0*10 - 25.0*4
	if got := ledgerRepo.Balance(domain.OwnerDriver, testDriverID, testCurrency); got != want {
		t.Errorf("expected balance %v, got %v", want, got)
	}
	if got := len(ledgerRepo.Transactions()); got != posters {
		t.Errorf("expected %d transactions, got %d", posters, got)
	}
}

func TestWalletCurrencies_AreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledgerRepo := NewMockLedgerRepository()
	walletService := service.NewWalletService(ledgerRepo)

	for _, currency := range []string{"USD", "EUR"} {
		if _, err := walletService.Post(ctx, service.PostRequest{
			OwnerType: domain.OwnerRider,
			OwnerID:   testRiderID,
			Currency:  currency,
			Action:    domain.ActionRecharge,
			Reason:    domain.ReasonBankPayment,
			Amount:    5,
		}); err != nil {
			t.Fatalf("post failed: %v", err)
		}
	}

	wallets, err := walletService.Wallets(ctx, domain.OwnerRider, testRiderID)
	if err != nil {
		t.Fatalf("wallets failed: %v", err)
	}
	if len(wallets) != 2 {
		t.Errorf("expected one wallet per currency, got %d", len(wallets))
	}
}
