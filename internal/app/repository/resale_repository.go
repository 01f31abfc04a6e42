package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type ResaleRepository interface {
	Create(listing *model.ResaleListing) error
	FindByID(id uint) (*model.ResaleListing, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.ResaleListing, error)
	FindActiveByMasterpiece(masterpieceID uint) (*model.ResaleListing, error)
	List(status string) ([]model.ResaleListing, error)
	FindBySeller(sellerID uint) ([]model.ResaleListing, error)
	Update(listing *model.ResaleListing) error
	UpdateWithTx(tx *gorm.DB, listing *model.ResaleListing) error

	CreateMessage(message *model.NegotiationMessage) error
	FindMessages(listingID uint) ([]model.NegotiationMessage, error)
}

type resaleRepository struct {
	db *gorm.DB
}

func NewResaleRepository(db *gorm.DB) ResaleRepository {
	return &resaleRepository{db: db}
}

// States in which a listing still blocks a new one for the same piece.
var openResaleStatuses = []model.ResaleStatus{
	model.ResaleRequested,
	model.ResaleApproved,
	model.ResaleAccepted,
}

func (r *resaleRepository) Create(listing *model.ResaleListing) error {
	return r.db.Create(listing).Error
}

func (r *resaleRepository) FindByID(id uint) (*model.ResaleListing, error) {
	var listing model.ResaleListing
	if err := r.db.Preload("Masterpiece").Preload("Seller").First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *resaleRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.ResaleListing, error) {
	var listing model.ResaleListing
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *resaleRepository) FindActiveByMasterpiece(masterpieceID uint) (*model.ResaleListing, error) {
	var listing model.ResaleListing
	err := r.db.Where("masterpiece_id = ? AND status IN ?", masterpieceID, openResaleStatuses).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *resaleRepository) List(status string) ([]model.ResaleListing, error) {
	var listings []model.ResaleListing
	query := r.db.Preload("Masterpiece").Preload("Seller").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *resaleRepository) FindBySeller(sellerID uint) ([]model.ResaleListing, error) {
	var listings []model.ResaleListing
	err := r.db.Preload("Masterpiece").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *resaleRepository) Update(listing *model.ResaleListing) error {
	return r.db.Save(listing).Error
}

func (r *resaleRepository) UpdateWithTx(tx *gorm.DB, listing *model.ResaleListing) error {
	return tx.Save(listing).Error
}

func (r *resaleRepository) CreateMessage(message *model.NegotiationMessage) error {
	return r.db.Create(message).Error
}

func (r *resaleRepository) FindMessages(listingID uint) ([]model.NegotiationMessage, error) {
	var messages []model.NegotiationMessage
	err := r.db.Preload("Sender").
		Where("listing_id = ?", listingID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
