package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

type AuctionRepository interface {
	Create(auction *model.Auction) error
	FindByID(id uint) (*model.Auction, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Auction, error)
	List(status string, includeVIP bool) ([]model.Auction, error)
	Update(auction *model.Auction) error
	UpdateWithTx(tx *gorm.DB, auction *model.Auction) error

	CreateBid(tx *gorm.DB, bid *model.Bid) error
	FindBids(auctionID uint) ([]model.Bid, error)
	CountBidsByBidder(auctionID, bidderID uint) (int64, error)
}

type auctionRepository struct {
	db *gorm.DB
}

func NewAuctionRepository(db *gorm.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) Create(auction *model.Auction) error {
	logger.Debug("Creating auction in database", map[string]interface{}{
		"masterpiece_id": auction.MasterpieceID,
		"starting_bid":   auction.StartingBid,
	})

	if err := r.db.Create(auction).Error; err != nil {
		logger.Error("Failed to create auction in database", err, map[string]interface{}{
			"masterpiece_id": auction.MasterpieceID,
		})
		return err
	}
	return nil
}

func (r *auctionRepository) FindByID(id uint) (*model.Auction, error) {
	var auction model.Auction
	if err := r.db.Preload("Masterpiece").First(&auction, id).Error; err != nil {
		return nil, err
	}
	return &auction, nil
}

// FindByIDForUpdate locks the auction row so concurrent bids serialize.
func (r *auctionRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Auction, error) {
	var auction model.Auction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&auction, id).Error; err != nil {
		return nil, err
	}
	return &auction, nil
}

func (r *auctionRepository) List(status string, includeVIP bool) ([]model.Auction, error) {
	var auctions []model.Auction
	query := r.db.Preload("Masterpiece").Order("ends_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if !includeVIP {
		query = query.Where("vip_only = ?", false)
	}
	if err := query.Find(&auctions).Error; err != nil {
		return nil, err
	}
	return auctions, nil
}

func (r *auctionRepository) Update(auction *model.Auction) error {
	return r.db.Save(auction).Error
}

func (r *auctionRepository) UpdateWithTx(tx *gorm.DB, auction *model.Auction) error {
	return tx.Save(auction).Error
}

func (r *auctionRepository) CreateBid(tx *gorm.DB, bid *model.Bid) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(bid).Error
}

func (r *auctionRepository) FindBids(auctionID uint) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.Preload("Bidder").
		Where("auction_id = ?", auctionID).
		Order("amount DESC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *auctionRepository) CountBidsByBidder(auctionID, bidderID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Bid{}).
		Where("auction_id = ? AND bidder_id = ?", auctionID, bidderID).
		Count(&count).Error
	return count, err
}
