package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type ResaleController struct {
	resaleService service.ResaleService
}

func NewResaleController(resaleService service.ResaleService) *ResaleController {
	return &ResaleController{
		resaleService: resaleService,
	}
}

type RequestResaleRequest struct {
	MasterpieceID uint    `json:"masterpiece_id" binding:"required"`
	AskingPrice   float64 `json:"asking_price" binding:"required,gt=0"`
}

type ReviewResaleRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

type NegotiationMessageRequest struct {
	Body  string   `json:"body"`
	Offer *float64 `json:"offer"`
}

type AcceptOfferRequest struct {
	BuyerID     uint    `json:"buyer_id" binding:"required"`
	AgreedPrice float64 `json:"agreed_price" binding:"required,gt=0"`
}

// Request asks to list a piece on the secondary market
// POST /api/v1/resales
func (ctrl *ResaleController) Request(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req RequestResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	listing, err := ctrl.resaleService.Request(req.MasterpieceID, userID, req.AskingPrice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrResaleNotSeller):
			apperrors.Forbidden(c, "Only the current owner may list this piece")
		case errors.Is(err, service.ErrResaleAlreadyListed):
			apperrors.Conflict(c, apperrors.ResaleAlreadyListed, "An open listing already exists for this piece")
		default:
			log.Error("Failed to request resale", err, map[string]interface{}{
				"masterpiece_id": req.MasterpieceID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"listing": listing,
	})
}

// Review approves or declines a listing
// POST /api/v1/admin/resales/:id/review
func (ctrl *ResaleController) Review(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReviewResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	listing, err := ctrl.resaleService.Review(id, adminID, req.Approve, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResaleNotFound):
			apperrors.NotFound(c, apperrors.ResaleNotFound, "Listing not found")
		case errors.Is(err, service.ErrResaleClosed):
			apperrors.Conflict(c, apperrors.ResaleClosed, "Listing has already been reviewed")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
	})
}

// List returns resale listings
// GET /api/v1/resales
func (ctrl *ResaleController) List(c *gin.Context) {
	listings, err := ctrl.resaleService.List(c.Query("status"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// ListMine returns the caller's listings
// GET /api/v1/resales/mine
func (ctrl *ResaleController) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	listings, err := ctrl.resaleService.ListBySeller(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
	})
}

// Get returns one listing
// GET /api/v1/resales/:id
func (ctrl *ResaleController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	listing, err := ctrl.resaleService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrResaleNotFound) {
			apperrors.NotFound(c, apperrors.ResaleNotFound, "Listing not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
	})
}

// Withdraw pulls the caller's listing from the market
// POST /api/v1/resales/:id/withdraw
func (ctrl *ResaleController) Withdraw(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := ctrl.resaleService.Withdraw(id, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResaleNotFound):
			apperrors.NotFound(c, apperrors.ResaleNotFound, "Listing not found")
		case errors.Is(err, service.ErrResaleNotSeller):
			apperrors.Forbidden(c, "Only the seller may withdraw this listing")
		case errors.Is(err, service.ErrResaleClosed):
			apperrors.Conflict(c, apperrors.ResaleClosed, "Listing can no longer be withdrawn")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
	})
}

// SendMessage posts into the negotiation thread
// POST /api/v1/resales/:id/messages
func (ctrl *ResaleController) SendMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req NegotiationMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	message, err := ctrl.resaleService.SendMessage(id, userID, req.Body, req.Offer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResaleNotFound):
			apperrors.NotFound(c, apperrors.ResaleNotFound, "Listing not found")
		case errors.Is(err, service.ErrResaleNotApproved):
			apperrors.Conflict(c, apperrors.ResaleNotApproved, "Listing is not open for negotiation")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}

// GetMessages returns the negotiation thread
// GET /api/v1/resales/:id/messages
func (ctrl *ResaleController) GetMessages(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	messages, err := ctrl.resaleService.GetMessages(id, userID, viewerRole(c) == "admin")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResaleNotFound):
			apperrors.NotFound(c, apperrors.ResaleNotFound, "Listing not found")
		case errors.Is(err, service.ErrResaleNotParticipant):
			apperrors.Forbidden(c, "Only negotiation participants may read this thread")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

// AcceptOffer binds the seller to a buyer
// POST /api/v1/resales/:id/accept
func (ctrl *ResaleController) AcceptOffer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	listing, err := ctrl.resaleService.AcceptOffer(id, userID, req.BuyerID, req.AgreedPrice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResaleNotFound):
			apperrors.NotFound(c, apperrors.ResaleNotFound, "Listing not found")
		case errors.Is(err, service.ErrResaleNotSeller):
			apperrors.Forbidden(c, "Only the seller may accept an offer")
		case errors.Is(err, service.ErrResaleNotApproved):
			apperrors.Conflict(c, apperrors.ResaleNotApproved, "Listing is not open for offers")
		case errors.Is(err, service.ErrResaleSelfPurchase):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "You cannot buy your own listing")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
	})
}

// Complete transfers ownership once the escrow settles
// POST /api/v1/admin/resales/:id/complete
func (ctrl *ResaleController) Complete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := ctrl.resaleService.Complete(id, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResaleNotFound):
			apperrors.NotFound(c, apperrors.ResaleNotFound, "Listing not found")
		case errors.Is(err, service.ErrResaleNotApproved), errors.Is(err, service.ErrResaleNoBuyer):
			apperrors.Conflict(c, apperrors.ResaleNotApproved, "Listing has no accepted offer")
		default:
			log.Error("Failed to complete resale", err, map[string]interface{}{
				"listing_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
	})
}
