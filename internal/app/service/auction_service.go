package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

var (
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrAuctionNotActive  = errors.New("auction is not open for bidding")
	ErrAuctionNotEnded   = errors.New("auction has not ended yet")
	ErrBidTooLow         = errors.New("bid must exceed the current highest bid")
	ErrAlreadyHighBidder = errors.New("you already hold the highest bid")
	ErrReserveNotMet     = errors.New("the reserve price was not met")
)

type CreateAuctionInput struct {
	MasterpieceID uint      `json:"masterpiece_id" binding:"required"`
	StartingBid   float64   `json:"starting_bid" binding:"required,gt=0"`
	ReservePrice  float64   `json:"reserve_price"`
	VIPOnly       bool      `json:"vip_only"`
	StartsAt      time.Time `json:"starts_at" binding:"required"`
	EndsAt        time.Time `json:"ends_at" binding:"required"`
}

type AuctionService interface {
	Create(input CreateAuctionInput, adminID uint) (*model.Auction, error)
	Get(auctionID uint, viewerRole model.UserRole) (*model.Auction, error)
	List(status string, viewerRole model.UserRole) ([]model.Auction, error)
	PlaceBid(auctionID, bidderID uint, bidderRole model.UserRole, amount float64) (*model.Bid, error)
	ListBids(auctionID uint, viewerRole model.UserRole) ([]model.Bid, error)
	Settle(auctionID, adminID uint) (*model.Auction, error)
}

type auctionService struct {
	db              *gorm.DB
	auctionRepo     repository.AuctionRepository
	masterpieceRepo repository.MasterpieceRepository
	rarity          RarityService
	notifications   NotificationService
	hub             *websocket.Hub
}

func NewAuctionService(db *gorm.DB, auctionRepo repository.AuctionRepository, masterpieceRepo repository.MasterpieceRepository, rarity RarityService, notifications NotificationService, hub *websocket.Hub) AuctionService {
	return &auctionService{
		db:              db,
		auctionRepo:     auctionRepo,
		masterpieceRepo: masterpieceRepo,
		rarity:          rarity,
		notifications:   notifications,
		hub:             hub,
	}
}

func (s *auctionService) Create(input CreateAuctionInput, adminID uint) (*model.Auction, error) {
	piece, err := s.masterpieceRepo.FindByID(input.MasterpieceID)
	if err != nil {
		return nil, ErrMasterpieceNotFound
	}
	if piece.Status != model.MasterpieceAvailable {
		return nil, ErrMasterpieceNotAvailable
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, fmt.Errorf("auction must end after it starts")
	}

	status := model.AuctionScheduled
	if !time.Now().Before(input.StartsAt) {
		status = model.AuctionActive
	}

	auction := &model.Auction{
		MasterpieceID: input.MasterpieceID,
		StartingBid:   input.StartingBid,
		ReservePrice:  input.ReservePrice,
		CurrentBid:    input.StartingBid,
		VIPOnly:       input.VIPOnly || piece.VIPOnly,
		Status:        status,
		StartsAt:      input.StartsAt,
		EndsAt:        input.EndsAt,
	}
	if err := s.auctionRepo.Create(auction); err != nil {
		return nil, err
	}

	// The piece leaves the catalog for the duration of the auction
	piece.Status = model.MasterpieceAuction
	if err := s.masterpieceRepo.Update(piece); err != nil {
		return nil, err
	}

	logger.Info("Auction created", map[string]interface{}{
		"auction_id":     auction.ID,
		"masterpiece_id": auction.MasterpieceID,
		"admin_id":       adminID,
	})
	if s.hub != nil && !auction.VIPOnly {
		s.hub.Broadcast(websocket.EventAuctionCreated, auction)
	}
	return auction, nil
}

func (s *auctionService) Get(auctionID uint, viewerRole model.UserRole) (*model.Auction, error) {
	auction, err := s.auctionRepo.FindByID(auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	// vip-only auctions are invisible to outsiders
	if auction.VIPOnly && !canSeeVIP(viewerRole) {
		return nil, ErrAuctionNotFound
	}
	if viewerRole != model.RoleAdmin {
		auction.ReservePrice = 0
	}
	return auction, nil
}

func (s *auctionService) List(status string, viewerRole model.UserRole) ([]model.Auction, error) {
	auctions, err := s.auctionRepo.List(status, canSeeVIP(viewerRole))
	if err != nil {
		return nil, err
	}
	if viewerRole != model.RoleAdmin {
		for i := range auctions {
			auctions[i].ReservePrice = 0
		}
	}
	return auctions, nil
}

// PlaceBid appends a bid inside a transaction holding the auction row,
// so concurrent bids serialize and each accepted bid is strictly above
// the previous one.
func (s *auctionService) PlaceBid(auctionID, bidderID uint, bidderRole model.UserRole, amount float64) (*model.Bid, error) {
	var (
		bid      *model.Bid
		outbidID *uint
	)

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	auction, err := s.auctionRepo.FindByIDForUpdate(tx, auctionID)
	if err != nil {
		tx.Rollback()
		return nil, ErrAuctionNotFound
	}
	if auction.VIPOnly && !canSeeVIP(bidderRole) {
		tx.Rollback()
		return nil, ErrAuctionNotFound
	}

	now := time.Now()
	if auction.Status == model.AuctionScheduled && !now.Before(auction.StartsAt) {
		auction.Status = model.AuctionActive
	}
	if auction.Status != model.AuctionActive || now.After(auction.EndsAt) {
		tx.Rollback()
		return nil, ErrAuctionNotActive
	}

	if auction.CurrentBidderID != nil && *auction.CurrentBidderID == bidderID {
		tx.Rollback()
		return nil, ErrAlreadyHighBidder
	}
	// CurrentBid starts at the starting bid, so the opening bid must
	// exceed it just like every later one.
	if amount <= auction.CurrentBid {
		tx.Rollback()
		return nil, ErrBidTooLow
	}

	outbidID = auction.CurrentBidderID

	bid = &model.Bid{
		AuctionID: auction.ID,
		BidderID:  bidderID,
		Amount:    amount,
	}
	if err := s.auctionRepo.CreateBid(tx, bid); err != nil {
		tx.Rollback()
		return nil, err
	}

	auction.CurrentBid = amount
	auction.CurrentBidderID = &bidderID
	if err := s.auctionRepo.UpdateWithTx(tx, auction); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if outbidID != nil {
		s.notifications.Notify(*outbidID, model.NotifyOutbid,
			"You have been outbid",
			fmt.Sprintf("A higher bid of %.2f EUR has been placed.", amount),
			fmt.Sprintf("/auctions/%d", auction.ID))
	}
	if s.hub != nil {
		s.hub.Broadcast(websocket.EventNewBid, map[string]interface{}{
			"auction_id":  auction.ID,
			"current_bid": amount,
		})
	}

	// Bid activity feeds the rarity score
	go func() {
		if _, err := s.rarity.Recompute(auction.MasterpieceID); err != nil {
			logger.Error("Failed to recompute rarity after bid", err, map[string]interface{}{
				"masterpiece_id": auction.MasterpieceID,
			})
		}
	}()

	return bid, nil
}

// freePiece puts the piece back on the market once the hammer falls.
// The winner goes through the ordinary purchase flow, which reserves
// the piece again when their request is approved.
func (s *auctionService) freePiece(tx *gorm.DB, masterpieceID uint) error {
	piece, err := s.masterpieceRepo.FindByIDForUpdate(tx, masterpieceID)
	if err != nil {
		return err
	}
	piece.Status = model.MasterpieceAvailable
	return s.masterpieceRepo.UpdateWithTx(tx, piece)
}

func (s *auctionService) ListBids(auctionID uint, viewerRole model.UserRole) ([]model.Bid, error) {
	auction, err := s.auctionRepo.FindByID(auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	if auction.VIPOnly && !canSeeVIP(viewerRole) {
		return nil, ErrAuctionNotFound
	}
	return s.auctionRepo.FindBids(auctionID)
}

// Settle closes an ended auction. If the reserve was met the highest
// bidder wins and is invited to complete the purchase.
func (s *auctionService) Settle(auctionID, adminID uint) (*model.Auction, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	auction, err := s.auctionRepo.FindByIDForUpdate(tx, auctionID)
	if err != nil {
		tx.Rollback()
		return nil, ErrAuctionNotFound
	}
	if auction.Status == model.AuctionSettled || auction.Status == model.AuctionCancelled {
		tx.Rollback()
		return nil, ErrAuctionNotActive
	}
	if time.Now().Before(auction.EndsAt) {
		tx.Rollback()
		return nil, ErrAuctionNotEnded
	}

	if auction.CurrentBidderID == nil || auction.CurrentBid < auction.ReservePrice {
		auction.Status = model.AuctionEnded
		if err := s.auctionRepo.UpdateWithTx(tx, auction); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := s.freePiece(tx, auction.MasterpieceID); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		return auction, ErrReserveNotMet
	}

	now := time.Now()
	auction.Status = model.AuctionSettled
	auction.WinnerID = auction.CurrentBidderID
	auction.SettledAt = &now
	if err := s.auctionRepo.UpdateWithTx(tx, auction); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := s.freePiece(tx, auction.MasterpieceID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Auction settled", map[string]interface{}{
		"auction_id": auction.ID,
		"winner_id":  *auction.WinnerID,
		"admin_id":   adminID,
	})
	s.notifications.Notify(*auction.WinnerID, model.NotifyAuctionWon,
		"You won the auction",
		fmt.Sprintf("Congratulations, your bid of %.2f EUR won. Our concierge will contact you to complete the purchase.", auction.CurrentBid),
		fmt.Sprintf("/auctions/%d", auction.ID))
	return auction, nil
}
