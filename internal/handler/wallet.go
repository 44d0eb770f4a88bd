package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/middleware"
	"dispatch/internal/service"
)

// WalletHandler handles HTTP requests for wallets and transactions.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// RechargeRequest is the HTTP request body for an operator posting.
type RechargeRequest struct {
	OwnerType string  `json:"owner_type"`
	OwnerID   string  `json:"owner_id"`
	Currency  string  `json:"currency"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
}

// WalletResponse is the HTTP response for wallet data.
type WalletResponse struct {
	ID        string  `json:"id"`
	OwnerType string  `json:"owner_type"`
	OwnerID   string  `json:"owner_id,omitempty"`
	Currency  string  `json:"currency"`
	Balance   float64 `json:"balance"`
}

// TransactionResponse is the HTTP response for one ledger entry.
type TransactionResponse struct {
	ID        string  `json:"id"`
	WalletID  string  `json:"wallet_id"`
	Action    string  `json:"action"`
	Reason    string  `json:"reason"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	TripID    string  `json:"trip_id,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

func newWalletResponse(wallet *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        wallet.ID,
		OwnerType: string(wallet.OwnerType),
		OwnerID:   wallet.OwnerID,
		Currency:  wallet.Currency,
		Balance:   wallet.Balance,
	}
}

// List handles GET /v1/wallets - the actor's own wallets.
func (h *WalletHandler) List(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
		return
	}

	ownerType := domain.OwnerRider
	if actor.Role == middleware.RoleDriver {
		ownerType = domain.OwnerDriver
	}

	wallets, err := h.walletService.Wallets(c.Request.Context(), ownerType, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		response = append(response, newWalletResponse(w))
	}
	respondJSON(c, http.StatusOK, response)
}

// Recharge handles POST /v1/wallets/recharge - operator corrections and
// top-ups. The sign follows the amount: positive recharges, negative
// deducts.
func (h *WalletHandler) Recharge(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleOperator {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "operators only"})
		return
	}

	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ownerType, ok := parseOwnerType(req.OwnerType)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid owner type"})
		return
	}

	action := domain.ActionRecharge
	if req.Amount < 0 {
		action = domain.ActionDeduct
	}
	reason := domain.ReasonBankPayment
	if req.Reason == string(domain.ReasonCorrection) {
		reason = domain.ReasonCorrection
	}

	wallet, err := h.walletService.Post(c.Request.Context(), service.PostRequest{
		OwnerType:  ownerType,
		OwnerID:    req.OwnerID,
		Currency:   req.Currency,
		Action:     action,
		Reason:     reason,
		Amount:     req.Amount,
		OperatorID: actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newWalletResponse(wallet))
}

// Transactions handles GET /v1/wallets/:id/transactions
func (h *WalletHandler) Transactions(c *gin.Context) {
	transactions, err := h.walletService.Transactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		response = append(response, TransactionResponse{
			ID:        txn.ID,
			WalletID:  txn.WalletID,
			Action:    string(txn.Action),
			Reason:    string(txn.Reason),
			Amount:    txn.Amount,
			Currency:  txn.Currency,
			TripID:    txn.TripID,
			Status:    string(txn.Status),
			CreatedAt: txn.CreatedAt.Format(timeLayout),
		})
	}
	respondJSON(c, http.StatusOK, response)
}

func parseOwnerType(s string) (domain.WalletOwnerType, bool) {
	switch domain.WalletOwnerType(s) {
	case domain.OwnerRider, domain.OwnerDriver, domain.OwnerFleet, domain.OwnerPlatform:
		return domain.WalletOwnerType(s), true
	default:
		return "", false
	}
}
