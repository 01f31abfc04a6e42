package repository

import (
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type ContractRepository interface {
	Create(tx *gorm.DB, contract *model.Contract) error
	FindByID(id uint) (*model.Contract, error)
	FindByWorkflow(workflowID uint) ([]model.Contract, error)
	FindByWorkflowAndType(tx *gorm.DB, workflowID uint, ctype model.ContractType) (*model.Contract, error)
	FindOpenDeposit(tx *gorm.DB, masterpieceID uint) (*model.Contract, error)
	FindByBuyer(buyerID uint) ([]model.Contract, error)
	Update(contract *model.Contract) error
	UpdateWithTx(tx *gorm.DB, contract *model.Contract) error
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(tx *gorm.DB, contract *model.Contract) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(contract).Error
}

func (r *contractRepository) FindByID(id uint) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.First(&contract, id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByWorkflow(workflowID uint) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.Where("workflow_id = ?", workflowID).
		Order("created_at ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *contractRepository) FindByWorkflowAndType(tx *gorm.DB, workflowID uint, ctype model.ContractType) (*model.Contract, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var contract model.Contract
	err := db.Where("workflow_id = ? AND type = ?", workflowID, ctype).
		Order("version DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindOpenDeposit returns the deposit contract of a pending purchase
// request, i.e. one not yet consumed by an approval.
func (r *contractRepository) FindOpenDeposit(tx *gorm.DB, masterpieceID uint) (*model.Contract, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var contract model.Contract
	err := db.Where("masterpiece_id = ? AND type = ? AND workflow_id IS NULL AND status IN ?",
		masterpieceID, model.ContractDeposit,
		[]model.ContractStatus{model.ContractDraft, model.ContractSigned}).
		Order("created_at DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByBuyer(buyerID uint) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *contractRepository) Update(contract *model.Contract) error {
	return r.db.Save(contract).Error
}

func (r *contractRepository) UpdateWithTx(tx *gorm.DB, contract *model.Contract) error {
	return tx.Save(contract).Error
}
