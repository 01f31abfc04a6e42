package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type EscrowController struct {
	escrowService service.EscrowService
}

func NewEscrowController(escrowService service.EscrowService) *EscrowController {
	return &EscrowController{
		escrowService: escrowService,
	}
}

type DisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ResolveRequest struct {
	Release bool `json:"release"`
}

// Get returns one escrow transaction
// GET /api/v1/escrow/:id
func (ctrl *EscrowController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	escrow, err := ctrl.escrowService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrEscrowNotFound) {
			apperrors.NotFound(c, apperrors.EscrowNotFound, "Escrow transaction not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"escrow": escrow,
	})
}

// List returns escrow transactions, optionally filtered by status
// GET /api/v1/admin/escrow
func (ctrl *EscrowController) List(c *gin.Context) {
	escrows, err := ctrl.escrowService.List(c.Query("status"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"escrows": escrows,
		"count":   len(escrows),
	})
}

// Dispute freezes a held escrow while the window is open
// POST /api/v1/escrow/:id/dispute
func (ctrl *EscrowController) Dispute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	escrow, err := ctrl.escrowService.Dispute(id, userID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEscrowNotFound):
			apperrors.NotFound(c, apperrors.EscrowNotFound, "Escrow transaction not found")
		case errors.Is(err, service.ErrNotEscrowBuyer):
			apperrors.Forbidden(c, "Only the buyer may dispute this escrow")
		case errors.Is(err, service.ErrEscrowNotHeld):
			apperrors.Conflict(c, apperrors.EscrowNotHeld, "Escrow funds are not held")
		case errors.Is(err, service.ErrEscrowWindowClosed):
			apperrors.Conflict(c, apperrors.EscrowAlreadyClosed, "The dispute window has closed")
		default:
			log.Error("Failed to dispute escrow", err, map[string]interface{}{
				"escrow_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"escrow": escrow,
	})
}

// Resolve settles a disputed escrow
// POST /api/v1/admin/escrow/:id/resolve
func (ctrl *EscrowController) Resolve(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	escrow, err := ctrl.escrowService.Resolve(id, adminID, req.Release)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEscrowNotFound):
			apperrors.NotFound(c, apperrors.EscrowNotFound, "Escrow transaction not found")
		case errors.Is(err, service.ErrEscrowAlreadyClosed):
			apperrors.Conflict(c, apperrors.EscrowAlreadyClosed, "Escrow is not under dispute")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"escrow": escrow,
	})
}
