package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

type WorkflowRepository interface {
	Create(workflow *model.PurchaseWorkflow) error
	CreateWithTx(tx *gorm.DB, workflow *model.PurchaseWorkflow) error
	FindByID(id uint) (*model.PurchaseWorkflow, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.PurchaseWorkflow, error)
	FindActiveByMasterpiece(masterpieceID uint) (*model.PurchaseWorkflow, error)
	FindByBuyer(buyerID uint) ([]model.PurchaseWorkflow, error)
	List(status string) ([]model.PurchaseWorkflow, error)
	Update(workflow *model.PurchaseWorkflow) error
	UpdateWithTx(tx *gorm.DB, workflow *model.PurchaseWorkflow) error
}

type workflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

// Terminal states excluded when looking for an active workflow.
var closedStatuses = []model.WorkflowStatus{
	model.WorkflowCompleted,
	model.WorkflowCancelled,
}

func (r *workflowRepository) Create(workflow *model.PurchaseWorkflow) error {
	logger.Debug("Creating purchase workflow in database", map[string]interface{}{
		"masterpiece_id": workflow.MasterpieceID,
		"buyer_id":       workflow.BuyerID,
	})

	if err := r.db.Create(workflow).Error; err != nil {
		logger.Error("Failed to create purchase workflow in database", err, map[string]interface{}{
			"masterpiece_id": workflow.MasterpieceID,
			"buyer_id":       workflow.BuyerID,
		})
		return err
	}
	return nil
}

func (r *workflowRepository) CreateWithTx(tx *gorm.DB, workflow *model.PurchaseWorkflow) error {
	return tx.Create(workflow).Error
}

func (r *workflowRepository) FindByID(id uint) (*model.PurchaseWorkflow, error) {
	var workflow model.PurchaseWorkflow
	if err := r.db.Preload("Masterpiece").Preload("Buyer").First(&workflow, id).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

// FindByIDForUpdate locks the workflow row so concurrent step commands
// serialize.
func (r *workflowRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.PurchaseWorkflow, error) {
	var workflow model.PurchaseWorkflow
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&workflow, id).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) FindActiveByMasterpiece(masterpieceID uint) (*model.PurchaseWorkflow, error) {
	var workflow model.PurchaseWorkflow
	err := r.db.Where("masterpiece_id = ? AND status NOT IN ?", masterpieceID, closedStatuses).
		First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) FindByBuyer(buyerID uint) ([]model.PurchaseWorkflow, error) {
	var workflows []model.PurchaseWorkflow
	err := r.db.Preload("Masterpiece").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&workflows).Error
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *workflowRepository) List(status string) ([]model.PurchaseWorkflow, error) {
	var workflows []model.PurchaseWorkflow
	query := r.db.Preload("Masterpiece").Preload("Buyer").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&workflows).Error; err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *workflowRepository) Update(workflow *model.PurchaseWorkflow) error {
	if err := r.db.Save(workflow).Error; err != nil {
		logger.Error("Failed to update purchase workflow in database", err, map[string]interface{}{
			"workflow_id": workflow.ID,
		})
		return err
	}
	return nil
}

func (r *workflowRepository) UpdateWithTx(tx *gorm.DB, workflow *model.PurchaseWorkflow) error {
	return tx.Save(workflow).Error
}
