package domain

import "time"

// WalletOwnerType identifies which ledger-holding party owns a wallet.
type WalletOwnerType string

const (
	OwnerRider    WalletOwnerType = "RIDER"
	OwnerDriver   WalletOwnerType = "DRIVER"
	OwnerFleet    WalletOwnerType = "FLEET"
	OwnerPlatform WalletOwnerType = "PLATFORM"
)

// TransactionAction is a bookkeeping label. The stored amount carries the
// sign: recharges are positive, deductions negative, always computed at
// the call site.
type TransactionAction string

const (
	ActionRecharge TransactionAction = "RECHARGE"
	ActionDeduct   TransactionAction = "DEDUCT"
)

// TransactionReason is the typed reason code for a ledger entry.
type TransactionReason string

const (
	ReasonCommission      TransactionReason = "COMMISSION"
	ReasonOrderFee        TransactionReason = "ORDER_FEE"
	ReasonCancellationFee TransactionReason = "CANCELLATION_FEE"
	ReasonBankPayment     TransactionReason = "BANK_PAYMENT"
	ReasonCorrection      TransactionReason = "CORRECTION"
)

// TransactionStatus represents the state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusDone TransactionStatus = "DONE"
)

// Wallet holds the current balance for one (owner, currency) pair. It is a
// cached projection of the transaction log: if the two diverge, the log wins.
type Wallet struct {
	ID        string
	OwnerType WalletOwnerType
	OwnerID   string // empty for the platform wallet
	Currency  string
	Balance   float64
}

// Transaction is an immutable ledger entry. Amount is signed.
type Transaction struct {
	ID         string
	WalletID   string
	Action     TransactionAction
	Reason     TransactionReason
	Amount     float64
	Currency   string
	TripID     string // optional
	OperatorID string // optional
	Status     TransactionStatus
	CreatedAt  time.Time
}
