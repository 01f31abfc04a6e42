package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type WorkflowController struct {
	workflowService service.WorkflowService
}

func NewWorkflowController(workflowService service.WorkflowService) *WorkflowController {
	return &WorkflowController{
		workflowService: workflowService,
	}
}

type RequestPurchaseRequest struct {
	MasterpieceID uint `json:"masterpiece_id" binding:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AdvanceStepRequest struct {
	Step model.WorkflowStep `json:"step" binding:"required"`
}

// RequestPurchase reserves a piece and issues the deposit contract
// for the caller to sign
// POST /api/v1/workflows
func (ctrl *WorkflowController) RequestPurchase(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req RequestPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	contract, err := ctrl.workflowService.RequestPurchase(req.MasterpieceID, userID, viewerRole(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrMasterpieceNotAvailable):
			apperrors.Conflict(c, apperrors.MasterpieceNotAvailable, "Masterpiece is not available for purchase")
		case errors.Is(err, service.ErrWorkflowExists):
			apperrors.Conflict(c, apperrors.WorkflowAlreadyExists, "An active purchase already exists for this piece")
		default:
			log.Error("Failed to create purchase request", err, map[string]interface{}{
				"masterpiece_id": req.MasterpieceID,
				"user_id":        userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Purchase request opened", map[string]interface{}{
		"contract_id": contract.ID,
		"buyer_id":    userID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"contract": contract,
	})
}

// Get returns a workflow. Buyers see only their own.
// GET /api/v1/workflows/:id
func (ctrl *WorkflowController) Get(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	workflow, err := ctrl.workflowService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrWorkflowNotFound) {
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	role := viewerRole(c)
	if role != model.RoleAdmin && workflow.BuyerID != userID {
		apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflow": workflow,
	})
}

// ListPayments returns the payments of a workflow. Buyers see only
// their own.
// GET /api/v1/workflows/:id/payments
func (ctrl *WorkflowController) ListPayments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	workflow, err := ctrl.workflowService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrWorkflowNotFound) {
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	if viewerRole(c) != model.RoleAdmin && workflow.BuyerID != userID {
		apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
		return
	}

	payments, err := ctrl.workflowService.ListPayments(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
	})
}

// ListMyPayments returns every payment the caller has made
// GET /api/v1/payments/mine
func (ctrl *WorkflowController) ListMyPayments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	payments, err := ctrl.workflowService.ListPaymentsByPayer(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"count":    len(payments),
	})
}

// ListMine returns the caller's workflows
// GET /api/v1/workflows
func (ctrl *WorkflowController) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	workflows, err := ctrl.workflowService.ListByBuyer(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

// ListAll returns every workflow, optionally filtered by status
// GET /api/v1/admin/workflows
func (ctrl *WorkflowController) ListAll(c *gin.Context) {
	workflows, err := ctrl.workflowService.List(c.Query("status"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

// Approve turns a signed purchase request into a workflow
// POST /api/v1/admin/masterpieces/:id/purchase/approve
func (ctrl *WorkflowController) Approve(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	workflow, err := ctrl.workflowService.Approve(id, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrPurchaseNotRequested):
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "No pending purchase request for this masterpiece")
		case errors.Is(err, service.ErrDepositNotSigned):
			apperrors.Conflict(c, apperrors.ContractNotSigned, "The deposit contract has not been signed")
		case errors.Is(err, service.ErrWorkflowExists):
			apperrors.Conflict(c, apperrors.WorkflowAlreadyExists, "This purchase has already been approved")
		default:
			log.Error("Failed to approve purchase", err, map[string]interface{}{
				"masterpiece_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflow": workflow,
	})
}

// Reject declines a pending purchase request
// POST /api/v1/admin/masterpieces/:id/purchase/reject
func (ctrl *WorkflowController) Reject(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	contract, err := ctrl.workflowService.Reject(id, adminID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrPurchaseNotRequested):
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "No pending purchase request for this masterpiece")
		case errors.Is(err, service.ErrWorkflowExists):
			apperrors.Conflict(c, apperrors.WorkflowAlreadyExists, "This purchase has already been approved")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract": contract,
	})
}

// AdvanceStep submits a step command for a workflow
// POST /api/v1/admin/workflows/:id/steps
func (ctrl *WorkflowController) AdvanceStep(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actorID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AdvanceStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	workflow, err := ctrl.workflowService.AdvanceStep(id, req.Step, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkflowNotFound):
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
		case errors.Is(err, service.ErrInvalidStep):
			apperrors.BadRequest(c, apperrors.WorkflowInvalidStep, "Unknown workflow step")
		case errors.Is(err, service.ErrStepOutOfOrder):
			apperrors.Conflict(c, apperrors.WorkflowStepOutOfOrder, "Step is not valid from the current state")
		case errors.Is(err, service.ErrWorkflowClosed):
			apperrors.Conflict(c, apperrors.WorkflowClosed, "Workflow is already closed")
		case errors.Is(err, service.ErrEscrowUnderDispute):
			apperrors.Conflict(c, apperrors.EscrowDisputed, "Escrow is under dispute and must be resolved first")
		default:
			log.Error("Failed to advance workflow", err, map[string]interface{}{
				"workflow_id": id,
				"step":        req.Step,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Workflow advanced", map[string]interface{}{
		"workflow_id": workflow.ID,
		"status":      workflow.Status,
	})
	c.JSON(http.StatusOK, gin.H{
		"workflow": workflow,
	})
}

// Cancel aborts a workflow before funds are held
// POST /api/v1/workflows/:id/cancel
func (ctrl *WorkflowController) Cancel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	isAdmin := viewerRole(c) == model.RoleAdmin
	workflow, err := ctrl.workflowService.Cancel(id, userID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkflowNotFound):
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
		case errors.Is(err, service.ErrNotWorkflowBuyer):
			apperrors.Forbidden(c, "Only the buyer may cancel this workflow")
		case errors.Is(err, service.ErrWorkflowClosed), errors.Is(err, service.ErrStepOutOfOrder):
			apperrors.Conflict(c, apperrors.WorkflowClosed, "Workflow can no longer be cancelled")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflow": workflow,
	})
}
