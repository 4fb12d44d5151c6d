package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/application/escrow"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/reporting"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/promptpay"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/adminrepo"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/middleware"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	openCasesLimit  = 100
)

var validate = validator.New()

// AdminHandler is the REST face of the admin console. Every route runs
// behind the JWT middleware, so the acting admin id comes from the token.
type AdminHandler struct {
	escrow    escrow.IEscrowService
	reports   reporting.IReportService
	adminRepo adminrepo.IAdminRepository
	admins    config.AdminConfig
	logger    zerolog.Logger
}

func NewAdminHandler(escrowSvc escrow.IEscrowService, reports reporting.IReportService, adminRepo adminrepo.IAdminRepository, admins config.AdminConfig, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		escrow:    escrowSvc,
		reports:   reports,
		adminRepo: adminRepo,
		admins:    admins,
		logger:    logger.With().Str("handler", "admin").Logger(),
	}
}

type replyRequest struct {
	Text string `json:"text" binding:"required"`
}

type adminProfileRequest struct {
	DisplayName string           `json:"displayName" validate:"max=100"`
	BankAccount *domain.BankInfo `json:"bankAccount" validate:"omitempty"`
}

type transactionPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	Pagination   domain.Pagination    `json:"pagination"`
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.escrow.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load dashboard stats")
		respondError(c, err)
		return
	}

	openCases := h.reports.ListOpen(c.Request.Context(), openCasesLimit)
	respond(c, http.StatusOK, "dashboard", gin.H{
		"transactions": stats,
		"open_reports": len(openCases),
	})
}

func (h *AdminHandler) ListTransactions(c *gin.Context) {
	page, pageSize, err := pageParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	filter := domain.TransactionFilter{
		Status:   domain.TransactionStatus(c.Query("status")),
		SellerID: c.Query("seller_id"),
		BuyerID:  c.Query("buyer_id"),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respondError(c, domain.ValidationError("admin.ListTransactions", "unknown status %q", filter.Status))
		return
	}

	txs, total, err := h.escrow.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list transactions")
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "transactions", transactionPage{
		Transactions: txs,
		Pagination: domain.Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (total + pageSize - 1) / pageSize,
		},
	})
}

func (h *AdminHandler) GetTransaction(c *gin.Context) {
	tx, err := h.escrow.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "transaction", tx)
}

func (h *AdminHandler) ConfirmPayment(c *gin.Context) {
	h.verify(c, escrow.DecisionConfirm)
}

func (h *AdminHandler) RejectPayment(c *gin.Context) {
	h.verify(c, escrow.DecisionReject)
}

func (h *AdminHandler) verify(c *gin.Context, decision escrow.Decision) {
	tx, err := h.escrow.AdminVerifyPayment(c.Request.Context(), adminID(c), c.Param("id"), decision)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "payment "+string(decision)+"ed", tx)
}

func (h *AdminHandler) ConfirmPayout(c *gin.Context) {
	tx, err := h.escrow.ConfirmSellerPayout(c.Request.Context(), adminID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "payout confirmed", tx)
}

func (h *AdminHandler) ReportPayoutProblem(c *gin.Context) {
	tx, err := h.escrow.ReportPayoutProblem(c.Request.Context(), adminID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "seller asked to resend bank info", tx)
}

func (h *AdminHandler) Cancel(c *gin.Context) {
	tx, err := h.escrow.Cancel(c.Request.Context(), adminID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "transaction cancelled", tx)
}

func (h *AdminHandler) ListReports(c *gin.Context) {
	userID := c.Query("user_id")
	if userID != "" {
		respond(c, http.StatusOK, "reports", h.reports.GetHistory(c.Request.Context(), userID, reporting.DefaultHistoryLimit))
		return
	}
	respond(c, http.StatusOK, "open reports", h.reports.ListOpen(c.Request.Context(), openCasesLimit))
}

func (h *AdminHandler) GetReport(c *gin.Context) {
	report, err := h.reports.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "report", report)
}

func (h *AdminHandler) ReplyReport(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respondError(c, domain.ValidationError("admin.ReplyReport", "text is required"))
		return
	}

	report, err := h.reports.AddAdminMessage(c.Request.Context(), adminID(c), c.Param("id"), strings.TrimSpace(req.Text))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "reply sent", report)
}

func (h *AdminHandler) CloseReport(c *gin.Context) {
	report, err := h.reports.CloseReport(c.Request.Context(), adminID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "report closed", report)
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	stored, err := h.adminRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list admins")
		respondError(c, domain.ExternalError("admin.ListAdmins", err))
		return
	}

	// Configured admins that never logged in still show up.
	byID := make(map[string]domain.Admin, len(stored))
	for _, a := range stored {
		byID[a.AdminID] = a
	}
	out := make([]domain.Admin, 0, len(h.admins.IDs))
	for _, id := range h.admins.IDs {
		if a, ok := byID[id]; ok {
			out = append(out, a)
			continue
		}
		out = append(out, domain.Admin{AdminID: id})
	}
	respond(c, http.StatusOK, "admins", out)
}

// UpdateAdmin stores an admin's display name and bank account. The bank
// account's PromptPay number becomes the escrow payee when this admin is
// the notify target.
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	const op = "admin.UpdateAdmin"

	id := c.Param("id")
	if !h.admins.IsAdmin(id) {
		respondError(c, domain.NotFoundError(op, "admin %s is not configured", id))
		return
	}

	var req adminProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ValidationError(op, "invalid body: %v", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(c, domain.ValidationError(op, "invalid profile: %v", err))
		return
	}
	if req.BankAccount != nil {
		req.BankAccount.PromptPayNumber = promptpay.NormalizePayee(req.BankAccount.PromptPayNumber)
		if req.BankAccount.PromptPayNumber != "" && !promptpay.ValidPayee(req.BankAccount.PromptPayNumber) {
			respondError(c, domain.ValidationError(op, "invalid PromptPay number"))
			return
		}
	}

	now := time.Now().UTC()
	admin := domain.Admin{
		AdminID:     id,
		DisplayName: strings.TrimSpace(req.DisplayName),
		BankAccount: req.BankAccount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.adminRepo.Upsert(c.Request.Context(), admin); err != nil {
		h.logger.Error().Err(err).Str("admin_id", id).Msg("Failed to save admin")
		respondError(c, domain.ExternalError(op, err))
		return
	}

	saved, err := h.adminRepo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, domain.ExternalError(op, err))
		return
	}
	h.logger.Info().Str("admin_id", id).Str("by", adminID(c)).Msg("Admin profile updated")
	respond(c, http.StatusOK, "admin updated", saved)
}

func adminID(c *gin.Context) string {
	return c.GetString(middleware.AdminIDKey)
}

func pageParams(c *gin.Context) (page, pageSize int, err error) {
	page, pageSize = 1, defaultPageSize
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, domain.ValidationError("admin.pageParams", "page must be a positive integer")
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if pageSize, err = strconv.Atoi(raw); err != nil || pageSize < 1 {
			return 0, 0, domain.ValidationError("admin.pageParams", "page_size must be a positive integer")
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, nil
}
