package repository

import (
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type PaymentRepository interface {
	Create(tx *gorm.DB, payment *model.Payment) error
	FindByID(id uint) (*model.Payment, error)
	FindByWorkflow(workflowID uint) ([]model.Payment, error)
	FindByPayer(payerID uint) ([]model.Payment, error)
	Update(tx *gorm.DB, payment *model.Payment) error
	List(state string) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *paymentRepository) Create(tx *gorm.DB, payment *model.Payment) error {
	return r.conn(tx).Create(payment).Error
}

func (r *paymentRepository) FindByID(id uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByWorkflow(workflowID uint) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("workflow_id = ?", workflowID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) FindByPayer(payerID uint) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("payer_id = ?", payerID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) Update(tx *gorm.DB, payment *model.Payment) error {
	return r.conn(tx).Save(payment).Error
}

func (r *paymentRepository) List(state string) ([]model.Payment, error) {
	var payments []model.Payment
	query := r.db.Order("created_at DESC")
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
