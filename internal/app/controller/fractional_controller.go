package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type FractionalController struct {
	fractionalService service.FractionalService
}

func NewFractionalController(fractionalService service.FractionalService) *FractionalController {
	return &FractionalController{
		fractionalService: fractionalService,
	}
}

type IssueSharesRequest struct {
	HolderID   uint    `json:"holder_id" binding:"required"`
	Percentage float64 `json:"percentage" binding:"required,gt=0"`
}

type TransferSharesRequest struct {
	ToID       uint    `json:"to_id" binding:"required"`
	Percentage float64 `json:"percentage" binding:"required,gt=0"`
	Price      float64 `json:"price" binding:"min=0"`
}

// IssueShares allocates a stake to an investor
// POST /api/v1/admin/masterpieces/:id/shares
func (ctrl *FractionalController) IssueShares(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req IssueSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	share, err := ctrl.fractionalService.IssueShares(id, req.HolderID, req.Percentage, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrSharesOversubscribed):
			apperrors.Conflict(c, apperrors.FractionOversubscribed, "Issued shares would exceed 100 percent")
		case errors.Is(err, service.ErrInvalidShareAmount):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Share percentage must be between 0 and 100")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"share": share,
	})
}

// Transfer moves shares between holders
// POST /api/v1/masterpieces/:id/shares/transfer
func (ctrl *FractionalController) Transfer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req TransferSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	transfer, err := ctrl.fractionalService.Transfer(id, userID, req.ToID, req.Percentage, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrShareNotFound):
			apperrors.NotFound(c, apperrors.FractionNotFound, "You hold no shares in this piece")
		case errors.Is(err, service.ErrInsufficientShares):
			apperrors.Conflict(c, apperrors.FractionInsufficient, "You do not hold enough shares")
		case errors.Is(err, service.ErrInvalidShareAmount):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Share percentage must be between 0 and 100")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transfer": transfer,
	})
}

// GetHoldings lists the cap table for a piece
// GET /api/v1/masterpieces/:id/shares
func (ctrl *FractionalController) GetHoldings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	shares, err := ctrl.fractionalService.GetHoldings(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shares": shares,
	})
}

// GetTransfers lists share movements for a piece
// GET /api/v1/masterpieces/:id/shares/transfers
func (ctrl *FractionalController) GetTransfers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	transfers, err := ctrl.fractionalService.GetTransfers(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transfers": transfers,
	})
}

// Revenue returns the revenue ledger
// GET /api/v1/investor/revenue
func (ctrl *FractionalController) Revenue(c *gin.Context) {
	entries, err := ctrl.fractionalService.Revenue(c.Query("source"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	total, err := ctrl.fractionalService.TotalRevenue()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
	})
}
