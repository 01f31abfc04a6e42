package repository

import (
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type FractionalRepository interface {
	FindShares(masterpieceID uint) ([]model.FractionalShare, error)
	FindShare(masterpieceID, holderID uint) (*model.FractionalShare, error)
	SumShares(tx *gorm.DB, masterpieceID uint) (float64, error)
	CreateShare(tx *gorm.DB, share *model.FractionalShare) error
	UpdateShare(tx *gorm.DB, share *model.FractionalShare) error
	DeleteShare(tx *gorm.DB, id uint) error
	CreateTransfer(tx *gorm.DB, transfer *model.FractionalTransfer) error
	FindTransfers(masterpieceID uint) ([]model.FractionalTransfer, error)

	CreateRevenueEntry(tx *gorm.DB, entry *model.RevenueEntry) error
	ListRevenue(source string) ([]model.RevenueEntry, error)
	SumRevenue() (float64, error)
}

type fractionalRepository struct {
	db *gorm.DB
}

func NewFractionalRepository(db *gorm.DB) FractionalRepository {
	return &fractionalRepository{db: db}
}

func (r *fractionalRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *fractionalRepository) FindShares(masterpieceID uint) ([]model.FractionalShare, error) {
	var shares []model.FractionalShare
	err := r.db.Preload("Holder").
		Where("masterpiece_id = ?", masterpieceID).
		Order("percentage DESC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *fractionalRepository) FindShare(masterpieceID, holderID uint) (*model.FractionalShare, error) {
	var share model.FractionalShare
	err := r.db.Where("masterpiece_id = ? AND holder_id = ?", masterpieceID, holderID).
		First(&share).Error
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *fractionalRepository) SumShares(tx *gorm.DB, masterpieceID uint) (float64, error) {
	var total float64
	err := r.conn(tx).Model(&model.FractionalShare{}).
		Where("masterpiece_id = ?", masterpieceID).
		Select("COALESCE(SUM(percentage), 0)").
		Scan(&total).Error
	return total, err
}

func (r *fractionalRepository) CreateShare(tx *gorm.DB, share *model.FractionalShare) error {
	return r.conn(tx).Create(share).Error
}

func (r *fractionalRepository) UpdateShare(tx *gorm.DB, share *model.FractionalShare) error {
	return r.conn(tx).Save(share).Error
}

func (r *fractionalRepository) DeleteShare(tx *gorm.DB, id uint) error {
	return r.conn(tx).Delete(&model.FractionalShare{}, id).Error
}

func (r *fractionalRepository) CreateTransfer(tx *gorm.DB, transfer *model.FractionalTransfer) error {
	return r.conn(tx).Create(transfer).Error
}

func (r *fractionalRepository) FindTransfers(masterpieceID uint) ([]model.FractionalTransfer, error) {
	var transfers []model.FractionalTransfer
	err := r.db.Where("masterpiece_id = ?", masterpieceID).
		Order("created_at DESC").
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}

func (r *fractionalRepository) CreateRevenueEntry(tx *gorm.DB, entry *model.RevenueEntry) error {
	return r.conn(tx).Create(entry).Error
}

func (r *fractionalRepository) ListRevenue(source string) ([]model.RevenueEntry, error) {
	var entries []model.RevenueEntry
	query := r.db.Order("created_at DESC")
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *fractionalRepository) SumRevenue() (float64, error) {
	var total float64
	err := r.db.Model(&model.RevenueEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
