package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type AuctionController struct {
	auctionService service.AuctionService
}

func NewAuctionController(auctionService service.AuctionService) *AuctionController {
	return &AuctionController{
		auctionService: auctionService,
	}
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Create opens an auction for a piece
// POST /api/v1/admin/auctions
func (ctrl *AuctionController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, _ := middleware.GetUserID(c)

	var input service.CreateAuctionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	auction, err := ctrl.auctionService.Create(input, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMasterpieceNotFound):
			apperrors.NotFound(c, apperrors.MasterpieceNotFound, "Masterpiece not found")
		case errors.Is(err, service.ErrMasterpieceNotAvailable):
			apperrors.Conflict(c, apperrors.MasterpieceNotAvailable, "Masterpiece is not available for auction")
		default:
			log.Error("Failed to create auction", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"auction": auction,
	})
}

// List returns auctions visible to the caller
// GET /api/v1/auctions
func (ctrl *AuctionController) List(c *gin.Context) {
	auctions, err := ctrl.auctionService.List(c.Query("status"), viewerRole(c))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auctions": auctions,
		"count":    len(auctions),
	})
}

// Get returns one auction
// GET /api/v1/auctions/:id
func (ctrl *AuctionController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	auction, err := ctrl.auctionService.Get(id, viewerRole(c))
	if err != nil {
		if errors.Is(err, service.ErrAuctionNotFound) {
			apperrors.NotFound(c, apperrors.AuctionNotFound, "Auction not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auction": auction,
	})
}

// PlaceBid submits a bid on an active auction
// POST /api/v1/auctions/:id/bids
func (ctrl *AuctionController) PlaceBid(c *gin.Context) {
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

	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	bid, err := ctrl.auctionService.PlaceBid(id, userID, viewerRole(c), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuctionNotFound):
			apperrors.NotFound(c, apperrors.AuctionNotFound, "Auction not found")
		case errors.Is(err, service.ErrAuctionNotActive):
			apperrors.Conflict(c, apperrors.AuctionNotActive, "Auction is not open for bidding")
		case errors.Is(err, service.ErrBidTooLow):
			apperrors.Conflict(c, apperrors.AuctionBidTooLow, "Bid must exceed the current highest bid")
		case errors.Is(err, service.ErrAlreadyHighBidder):
			apperrors.Conflict(c, apperrors.AuctionSelfOutbid, "You already hold the highest bid")
		default:
			log.Error("Failed to place bid", err, map[string]interface{}{
				"auction_id": id,
				"bidder_id":  userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Bid placed", map[string]interface{}{
		"auction_id": id,
		"amount":     req.Amount,
	})
	c.JSON(http.StatusCreated, gin.H{
		"bid": bid,
	})
}

// ListBids returns the bid history for an auction
// GET /api/v1/auctions/:id/bids
func (ctrl *AuctionController) ListBids(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	bids, err := ctrl.auctionService.ListBids(id, viewerRole(c))
	if err != nil {
		if errors.Is(err, service.ErrAuctionNotFound) {
			apperrors.NotFound(c, apperrors.AuctionNotFound, "Auction not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bids":  bids,
		"count": len(bids),
	})
}

// Settle closes an ended auction
// POST /api/v1/admin/auctions/:id/settle
func (ctrl *AuctionController) Settle(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	auction, err := ctrl.auctionService.Settle(id, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuctionNotFound):
			apperrors.NotFound(c, apperrors.AuctionNotFound, "Auction not found")
		case errors.Is(err, service.ErrAuctionNotEnded):
			apperrors.Conflict(c, apperrors.AuctionNotActive, "Auction has not ended yet")
		case errors.Is(err, service.ErrAuctionNotActive):
			apperrors.Conflict(c, apperrors.AuctionEnded, "Auction is already settled")
		case errors.Is(err, service.ErrReserveNotMet):
			c.JSON(http.StatusOK, gin.H{
				"auction": auction,
				"message": "Reserve price was not met; no winner",
			})
			return
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auction": auction,
	})
}
