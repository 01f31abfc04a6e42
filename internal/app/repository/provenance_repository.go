package repository

import (
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type ProvenanceRepository interface {
	CreateEvent(tx *gorm.DB, event *model.ProvenanceEvent) error
	FindTimeline(masterpieceID uint) ([]model.ProvenanceEvent, error)

	CreateServiceRecord(record *model.ServiceRecord) error
	FindServiceHistory(masterpieceID uint) ([]model.ServiceRecord, error)
	CountServices(masterpieceID uint) (int64, error)
	SumServiceCosts(masterpieceID uint) (float64, error)

	CreateAuditLog(log *model.AuditLog) error
	ListAuditLogs(entity string, limit int) ([]model.AuditLog, error)
}

type provenanceRepository struct {
	db *gorm.DB
}

func NewProvenanceRepository(db *gorm.DB) ProvenanceRepository {
	return &provenanceRepository{db: db}
}

func (r *provenanceRepository) CreateEvent(tx *gorm.DB, event *model.ProvenanceEvent) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(event).Error
}

func (r *provenanceRepository) FindTimeline(masterpieceID uint) ([]model.ProvenanceEvent, error) {
	var events []model.ProvenanceEvent
	err := r.db.Where("masterpiece_id = ?", masterpieceID).
		Order("occurred_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *provenanceRepository) CreateServiceRecord(record *model.ServiceRecord) error {
	return r.db.Create(record).Error
}

func (r *provenanceRepository) FindServiceHistory(masterpieceID uint) ([]model.ServiceRecord, error) {
	var records []model.ServiceRecord
	err := r.db.Where("masterpiece_id = ?", masterpieceID).
		Order("performed_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *provenanceRepository) CountServices(masterpieceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ServiceRecord{}).
		Where("masterpiece_id = ?", masterpieceID).
		Count(&count).Error
	return count, err
}

func (r *provenanceRepository) SumServiceCosts(masterpieceID uint) (float64, error) {
	var total float64
	err := r.db.Model(&model.ServiceRecord{}).
		Where("masterpiece_id = ?", masterpieceID).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&total).Error
	return total, err
}

func (r *provenanceRepository) CreateAuditLog(log *model.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *provenanceRepository) ListAuditLogs(entity string, limit int) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	query := r.db.Order("created_at DESC")
	if entity != "" {
		query = query.Where("entity = ?", entity)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
