package repository

import (
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type LogisticsRepository interface {
	CreateProductionUpdate(update *model.ProductionUpdate) error
	FindProductionUpdates(workflowID uint) ([]model.ProductionUpdate, error)

	UpsertDeliveryDetail(detail *model.DeliveryDetail) error
	FindDeliveryDetail(workflowID uint) (*model.DeliveryDetail, error)
	UpdateDeliveryDetail(detail *model.DeliveryDetail) error

	CreateShippingOrder(order *model.ShippingOrder) error
	FindShippingOrder(workflowID uint) (*model.ShippingOrder, error)
	UpdateShippingOrder(order *model.ShippingOrder) error

	CreateInsurancePolicy(policy *model.InsurancePolicy) error
	FindInsurancePolicies(masterpieceID uint) ([]model.InsurancePolicy, error)
}

type logisticsRepository struct {
	db *gorm.DB
}

func NewLogisticsRepository(db *gorm.DB) LogisticsRepository {
	return &logisticsRepository{db: db}
}

func (r *logisticsRepository) CreateProductionUpdate(update *model.ProductionUpdate) error {
	return r.db.Create(update).Error
}

func (r *logisticsRepository) FindProductionUpdates(workflowID uint) ([]model.ProductionUpdate, error) {
	var updates []model.ProductionUpdate
	err := r.db.Where("workflow_id = ?", workflowID).
		Order("created_at ASC").
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *logisticsRepository) UpsertDeliveryDetail(detail *model.DeliveryDetail) error {
	var existing model.DeliveryDetail
	err := r.db.Where("workflow_id = ?", detail.WorkflowID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(detail).Error
	}
	if err != nil {
		return err
	}
	detail.ID = existing.ID
	return r.db.Save(detail).Error
}

func (r *logisticsRepository) FindDeliveryDetail(workflowID uint) (*model.DeliveryDetail, error) {
	var detail model.DeliveryDetail
	if err := r.db.Where("workflow_id = ?", workflowID).First(&detail).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *logisticsRepository) UpdateDeliveryDetail(detail *model.DeliveryDetail) error {
	return r.db.Save(detail).Error
}

func (r *logisticsRepository) CreateShippingOrder(order *model.ShippingOrder) error {
	return r.db.Create(order).Error
}

func (r *logisticsRepository) FindShippingOrder(workflowID uint) (*model.ShippingOrder, error) {
	var order model.ShippingOrder
	err := r.db.Where("workflow_id = ?", workflowID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *logisticsRepository) UpdateShippingOrder(order *model.ShippingOrder) error {
	return r.db.Save(order).Error
}

func (r *logisticsRepository) CreateInsurancePolicy(policy *model.InsurancePolicy) error {
	return r.db.Create(policy).Error
}

func (r *logisticsRepository) FindInsurancePolicies(masterpieceID uint) ([]model.InsurancePolicy, error) {
	var policies []model.InsurancePolicy
	err := r.db.Where("masterpiece_id = ?", masterpieceID).
		Order("valid_from DESC").
		Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}
