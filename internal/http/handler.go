package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/gigpay/internal/http/middleware"
	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/service"
)

type Handler struct {
	engine  *service.Engine
	exports *service.ExportService
	log     zerolog.Logger
}

func NewHandler(engine *service.Engine, exports *service.ExportService, log zerolog.Logger) *Handler {
	return &Handler{engine: engine, exports: exports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/funds", h.getContractFunds)
	protected.POST("/contracts/:id/complete", h.completeContract)
	protected.POST("/contracts/:id/cancel", h.cancelContract)

	protected.POST("/contracts/:id/milestones", h.addMilestone)
	protected.GET("/contracts/:id/milestones", h.listMilestones)
	protected.GET("/contracts/:id/milestones/:mid", h.getMilestone)
	protected.POST("/contracts/:id/milestones/:mid/submit", h.submitMilestone)
	protected.POST("/contracts/:id/milestones/:mid/approve", h.approveMilestone)

	protected.POST("/contracts/:id/dispute", h.raiseDispute)
	protected.GET("/contracts/:id/dispute", h.getDispute)
	protected.POST("/contracts/:id/dispute/resolve", h.resolveDispute)

	protected.POST("/contracts/:id/rating", h.submitRating)
	protected.GET("/contracts/:id/rating", h.getRating)

	protected.GET("/contracts/:id/ledger", h.listLedger)
	protected.GET("/contracts/:id/statement.pdf", h.exportStatementPDF)
	protected.GET("/contracts/:id/ledger.xlsx", h.exportLedgerWorkbook)

	protected.GET("/platform/fee", h.getPlatformFee)
	protected.PUT("/platform/fee", h.setPlatformFee)
	protected.GET("/platform/fee/calculate", h.calculatePlatformFee)

	protected.POST("/accounts/:account/deposit", h.depositFunds)
	protected.GET("/accounts/:account", h.getBalance)
}

type createContractRequest struct {
	Freelancer  string `json:"freelancer" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TotalAmount uint64 `json:"total_amount"`
	Deadline    uint64 `json:"deadline"`
}

type addMilestoneRequest struct {
	MilestoneID uint64 `json:"milestone_id"`
	Description string `json:"description"`
	Amount      uint64 `json:"amount"`
	DueDate     uint64 `json:"due_date"`
}

type raiseDisputeRequest struct {
	Reason string `json:"reason"`
}

type resolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

type submitRatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

type setPlatformFeeRequest struct {
	FeeRate uint32 `json:"fee_rate"`
}

type depositRequest struct {
	Amount uint64 `json:"amount"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createContractRequest
	if !h.bind(c, &req) {
		return
	}

	id, err := h.engine.CreateContract(c.Request.Context(), principal, service.CreateContractInput{
		Freelancer:  strings.TrimSpace(req.Freelancer),
		Title:       req.Title,
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contract_id": id})
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contracts, err := h.engine.ListContracts(c.Request.Context(), principal.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	contract, err := h.engine.GetContract(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) getContractFunds(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	funds, err := h.engine.GetContractFunds(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, funds)
}

func (h *Handler) completeContract(c *gin.Context) {
	h.contractAction(c, h.engine.CompleteContract)
}

func (h *Handler) cancelContract(c *gin.Context) {
	h.contractAction(c, h.engine.CancelContract)
}

func (h *Handler) addMilestone(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req addMilestoneRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.engine.AddMilestone(c.Request.Context(), principal, id, service.AddMilestoneInput{
		MilestoneID: req.MilestoneID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contract_id": id, "milestone_id": req.MilestoneID})
}

func (h *Handler) listMilestones(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	milestones, err := h.engine.ListMilestones(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

func (h *Handler) getMilestone(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	mid, ok := h.pathID(c, "mid")
	if !ok {
		return
	}
	milestone, err := h.engine.GetMilestone(c.Request.Context(), id, mid)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *Handler) submitMilestone(c *gin.Context) {
	h.milestoneAction(c, h.engine.SubmitMilestone)
}

func (h *Handler) approveMilestone(c *gin.Context) {
	h.milestoneAction(c, h.engine.ApproveMilestone)
}

func (h *Handler) raiseDispute(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req raiseDisputeRequest
	if !h.bindOptional(c, &req) {
		return
	}
	if err := h.engine.RaiseDispute(c.Request.Context(), principal, id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) getDispute(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	dispute, err := h.engine.GetDispute(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dispute)
}

func (h *Handler) resolveDispute(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.engine.ResolveDispute(c.Request.Context(), principal, id, req.Resolution); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) submitRating(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req submitRatingRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.engine.SubmitRating(c.Request.Context(), principal, id, req.Score, req.Comment); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

func (h *Handler) getRating(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rating, err := h.engine.GetRating(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *Handler) listLedger(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.engine.ListLedger(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) exportStatementPDF(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.exports.StatementPDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) exportLedgerWorkbook(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.exports.LedgerWorkbook(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) getPlatformFee(c *gin.Context) {
	rate, err := h.engine.PlatformFeeRate(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_rate": rate, "max_fee_rate": service.MaxFeeRate})
}

func (h *Handler) setPlatformFee(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req setPlatformFeeRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.engine.SetPlatformFee(c.Request.Context(), principal, req.FeeRate); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_rate": req.FeeRate})
}

func (h *Handler) calculatePlatformFee(c *gin.Context) {
	amount, err := strconv.ParseUint(strings.TrimSpace(c.Query("amount")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount", "code": "invalid_input"})
		return
	}
	fee, err := h.engine.CalculatePlatformFee(c.Request.Context(), amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount, "fee": fee})
}

func (h *Handler) depositFunds(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	account := strings.TrimSpace(c.Param("account"))
	var req depositRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.engine.DepositFunds(c.Request.Context(), principal, account, req.Amount); err != nil {
		h.handleError(c, err)
		return
	}
	h.writeBalance(c, principal, account)
}

func (h *Handler) getBalance(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	h.writeBalance(c, principal, strings.TrimSpace(c.Param("account")))
}

func (h *Handler) writeBalance(c *gin.Context, caller model.Principal, account string) {
	balance, err := h.engine.AccountBalance(c.Request.Context(), caller, account)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Account{ID: account, Balance: balance})
}

func (h *Handler) contractAction(c *gin.Context, action func(ctx context.Context, caller model.Principal, contractID uint64) error) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := action(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) milestoneAction(c *gin.Context, action func(ctx context.Context, caller model.Principal, contractID, milestoneID uint64) error) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	mid, ok := h.pathID(c, "mid")
	if !ok {
		return
	}
	if err := action(c.Request.Context(), principal, id, mid); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal", "code": "unauthenticated"})
	}
	return principal, ok
}

func (h *Handler) pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": "invalid_input"})
		return 0, false
	}
	return id, true
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
		return false
	}
	return true
}

// bindOptional is bind for requests whose fields are all optional: an empty
// body leaves req zero-valued.
func (h *Handler) bindOptional(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
		return false
	}
	return true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "code": service.ErrorCode(err)}
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, body)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrDuplicateMilestone),
		errors.Is(err, service.ErrDuplicateRating),
		errors.Is(err, service.ErrInsufficientEscrow),
		errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrFeeExceedsMaximum):
		c.JSON(http.StatusBadRequest, body)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
	}
}
