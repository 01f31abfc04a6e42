package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type EscrowRepository interface {
	Create(tx *gorm.DB, escrow *model.EscrowTransaction) error
	FindByID(id uint) (*model.EscrowTransaction, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.EscrowTransaction, error)
	FindByWorkflow(workflowID uint) (*model.EscrowTransaction, error)
	FindByResale(resaleID uint) (*model.EscrowTransaction, error)
	FindExpiredHeld(now time.Time) ([]model.EscrowTransaction, error)
	Update(tx *gorm.DB, escrow *model.EscrowTransaction) error
	List(status string) ([]model.EscrowTransaction, error)
}

type escrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) EscrowRepository {
	return &escrowRepository{db: db}
}

func (r *escrowRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *escrowRepository) Create(tx *gorm.DB, escrow *model.EscrowTransaction) error {
	return r.conn(tx).Create(escrow).Error
}

func (r *escrowRepository) FindByID(id uint) (*model.EscrowTransaction, error) {
	var escrow model.EscrowTransaction
	if err := r.db.First(&escrow, id).Error; err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.EscrowTransaction, error) {
	var escrow model.EscrowTransaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&escrow, id).Error; err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) FindByWorkflow(workflowID uint) (*model.EscrowTransaction, error) {
	var escrow model.EscrowTransaction
	if err := r.db.Where("workflow_id = ?", workflowID).First(&escrow).Error; err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) FindByResale(resaleID uint) (*model.EscrowTransaction, error) {
	var escrow model.EscrowTransaction
	if err := r.db.Where("resale_id = ?", resaleID).First(&escrow).Error; err != nil {
		return nil, err
	}
	return &escrow, nil
}

// FindExpiredHeld returns purchase escrows still HELD past their
// dispute window. The sweeper releases them.
func (r *escrowRepository) FindExpiredHeld(now time.Time) ([]model.EscrowTransaction, error) {
	var escrows []model.EscrowTransaction
	err := r.db.Where("status = ? AND source = ? AND window_ends_at <= ?",
		model.EscrowHeld, model.EscrowFromPurchase, now).
		Find(&escrows).Error
	if err != nil {
		return nil, err
	}
	return escrows, nil
}

func (r *escrowRepository) Update(tx *gorm.DB, escrow *model.EscrowTransaction) error {
	return r.conn(tx).Save(escrow).Error
}

func (r *escrowRepository) List(status string) ([]model.EscrowTransaction, error) {
	var escrows []model.EscrowTransaction
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&escrows).Error; err != nil {
		return nil, err
	}
	return escrows, nil
}
