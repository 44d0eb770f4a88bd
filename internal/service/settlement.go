package service

import (
	"context"
	"log"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// Posting is one planned ledger entry of a settlement.
type Posting struct {
	OwnerType domain.WalletOwnerType
	OwnerID   string
	Action    domain.TransactionAction
	Reason    domain.TransactionReason
	Amount    float64 // signed
}

// SettlementPlan is the ordered list of postings executed when a trip
// finishes, computed before any money moves. Order matters: the commission
// deduct precedes the fleet and platform shares derived from it, and the
// trip's paidAmount update comes only after every posting so a mid-plan
// failure leaves the trip retriable.
//
// Cash collected in person is an out-of-band asset: the driver keeps it
// and the ledger never posts it. It only reduces the driver's order-fee
// recharge and the rider's deduct.
type SettlementPlan struct {
	TripID     string
	Currency   string
	Commission float64
	FleetShare float64
	Postings   []Posting
}

// BuildSettlementPlan computes the commission split for a finished trip.
// fleet is nil for independent drivers; cash is what the driver collected
// in person. riderCredit only gates whether the rider deduct is posted:
// the posted amount is the full unpaid remainder after cash, so callers
// must verify credit plus cash covers it before applying the plan.
func BuildSettlementPlan(trip *domain.Trip, tariff *domain.Service, fleet *domain.Fleet, riderCredit, cash float64) SettlementPlan {
	commission := tariff.ProviderShareFlat + tariff.ProviderSharePercent*trip.CostAfterCoupon/100

	plan := SettlementPlan{
		TripID:     trip.ID,
		Currency:   trip.Currency,
		Commission: commission,
	}

	plan.Postings = append(plan.Postings, Posting{
		OwnerType: domain.OwnerDriver,
		OwnerID:   trip.DriverID,
		Action:    domain.ActionDeduct,
		Reason:    domain.ReasonCommission,
		Amount:    -commission,
	})

	if fleet != nil {
		plan.FleetShare = fleet.CommissionShareFlat + fleet.CommissionSharePercent*commission/100
		if plan.FleetShare > 0 {
			plan.Postings = append(plan.Postings, Posting{
				OwnerType: domain.OwnerFleet,
				OwnerID:   fleet.ID,
				Action:    domain.ActionRecharge,
				Reason:    domain.ReasonCommission,
				Amount:    plan.FleetShare,
			})
		}
	}

	plan.Postings = append(plan.Postings, Posting{
		OwnerType: domain.OwnerPlatform,
		Action:    domain.ActionRecharge,
		Reason:    domain.ReasonCommission,
		Amount:    commission - plan.FleetShare,
	})

	// Return to the driver the fare portion not collected as cash; the
	// commission was already deducted from the gross above.
	if trip.CostAfterCoupon-cash > 0 {
		plan.Postings = append(plan.Postings, Posting{
			OwnerType: domain.OwnerDriver,
			OwnerID:   trip.DriverID,
			Action:    domain.ActionRecharge,
			Reason:    domain.ReasonOrderFee,
			Amount:    trip.CostAfterCoupon - cash,
		})
	}

	if unpaid := trip.UnpaidAmount(); riderCredit > 0 && cash < unpaid {
		plan.Postings = append(plan.Postings, Posting{
			OwnerType: domain.OwnerRider,
			OwnerID:   trip.RiderID,
			Action:    domain.ActionDeduct,
			Reason:    domain.ReasonOrderFee,
			Amount:    -(unpaid - cash),
		})
	}

	return plan
}

// SettlementService drives the wallet ledger through a settlement plan.
type SettlementService struct {
	ledger   Ledger
	tripRepo repository.TripRepository
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(ledger Ledger, tripRepo repository.TripRepository) *SettlementService {
	return &SettlementService{ledger: ledger, tripRepo: tripRepo}
}

// Settle applies the plan's postings in order and then marks the trip
// fully paid. An already-settled trip is a no-op, so re-finishing cannot
// double-post commission.
func (s *SettlementService) Settle(ctx context.Context, trip *domain.Trip, tariff *domain.Service, fleet *domain.Fleet, riderCredit, cash float64) error {
	if trip.PaidAmount >= trip.CostAfterCoupon {
		return nil
	}

	plan := BuildSettlementPlan(trip, tariff, fleet, riderCredit, cash)

	for _, posting := range plan.Postings {
		log.Printf("settlement: trip=%s %s %s %s %.2f", trip.ID, posting.OwnerType, posting.Action, posting.Reason, posting.Amount)
		_, err := s.ledger.Post(ctx, PostRequest{
			OwnerType: posting.OwnerType,
			OwnerID:   posting.OwnerID,
			Currency:  plan.Currency,
			Action:    posting.Action,
			Reason:    posting.Reason,
			Amount:    posting.Amount,
			TripID:    trip.ID,
		})
		if err != nil {
			// paidAmount is untouched, so the finish stays retriable.
			return err
		}
	}

	if err := s.tripRepo.SetPaidAmount(ctx, trip.ID, trip.CostAfterCoupon); err != nil {
		return err
	}
	trip.PaidAmount = trip.CostAfterCoupon
	return nil
}
