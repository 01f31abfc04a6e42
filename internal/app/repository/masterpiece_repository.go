package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

// MasterpieceFilter narrows catalog queries.
type MasterpieceFilter struct {
	Status     string
	Category   string
	Edition    string
	IncludeVIP bool // false hides vip_only pieces
	OwnerID    *uint
}

type MasterpieceRepository interface {
	Create(piece *model.Masterpiece) error
	FindByID(id uint) (*model.Masterpiece, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Masterpiece, error)
	FindBySerial(serial string) (*model.Masterpiece, error)
	Update(piece *model.Masterpiece) error
	UpdateWithTx(tx *gorm.DB, piece *model.Masterpiece) error
	List(filter MasterpieceFilter) ([]model.Masterpiece, error)
	Delete(id uint) error

	CreateOwnershipRecord(tx *gorm.DB, record *model.OwnershipRecord) error
	FindOwnershipHistory(masterpieceID uint) ([]model.OwnershipRecord, error)

	CreateWaitlistEntry(entry *model.WaitlistEntry) error
	FindWaitlist(masterpieceID uint) ([]model.WaitlistEntry, error)
	DeleteWaitlistEntry(masterpieceID, userID uint) error

	CreateReservation(reservation *model.Reservation) error
	FindActiveReservation(masterpieceID uint) (*model.Reservation, error)
	UpdateReservation(reservation *model.Reservation) error

	CreateMoment(moment *model.AtelierMoment) error
	ListMoments(masterpieceID *uint, limit int) ([]model.AtelierMoment, error)
}

type masterpieceRepository struct {
	db *gorm.DB
}

func NewMasterpieceRepository(db *gorm.DB) MasterpieceRepository {
	return &masterpieceRepository{db: db}
}

func (r *masterpieceRepository) Create(piece *model.Masterpiece) error {
	logger.Debug("Creating masterpiece in database", map[string]interface{}{
		"title":         piece.Title,
		"serial_number": piece.SerialNumber,
	})

	if err := r.db.Create(piece).Error; err != nil {
		logger.Error("Failed to create masterpiece in database", err, map[string]interface{}{
			"serial_number": piece.SerialNumber,
		})
		return err
	}
	return nil
}

func (r *masterpieceRepository) FindByID(id uint) (*model.Masterpiece, error) {
	var piece model.Masterpiece
	if err := r.db.Preload("CurrentOwner").First(&piece, id).Error; err != nil {
		return nil, err
	}
	return &piece, nil
}

// FindByIDForUpdate locks the masterpiece row for the duration of the
// transaction. All workflow steps go through this lock.
func (r *masterpieceRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Masterpiece, error) {
	var piece model.Masterpiece
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&piece, id).Error; err != nil {
		return nil, err
	}
	return &piece, nil
}

func (r *masterpieceRepository) FindBySerial(serial string) (*model.Masterpiece, error) {
	var piece model.Masterpiece
	if err := r.db.Where("serial_number = ?", serial).First(&piece).Error; err != nil {
		return nil, err
	}
	return &piece, nil
}

func (r *masterpieceRepository) Update(piece *model.Masterpiece) error {
	if err := r.db.Save(piece).Error; err != nil {
		logger.Error("Failed to update masterpiece in database", err, map[string]interface{}{
			"masterpiece_id": piece.ID,
		})
		return err
	}
	return nil
}

func (r *masterpieceRepository) UpdateWithTx(tx *gorm.DB, piece *model.Masterpiece) error {
	return tx.Save(piece).Error
}

func (r *masterpieceRepository) List(filter MasterpieceFilter) ([]model.Masterpiece, error) {
	var pieces []model.Masterpiece
	query := r.db.Order("created_at DESC")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Edition != "" {
		query = query.Where("edition = ?", filter.Edition)
	}
	if !filter.IncludeVIP {
		query = query.Where("vip_only = ?", false)
	}
	if filter.OwnerID != nil {
		query = query.Where("current_owner_id = ?", *filter.OwnerID)
	}

	if err := query.Find(&pieces).Error; err != nil {
		return nil, err
	}
	return pieces, nil
}

func (r *masterpieceRepository) Delete(id uint) error {
	return r.db.Delete(&model.Masterpiece{}, id).Error
}

func (r *masterpieceRepository) CreateOwnershipRecord(tx *gorm.DB, record *model.OwnershipRecord) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(record).Error
}

func (r *masterpieceRepository) FindOwnershipHistory(masterpieceID uint) ([]model.OwnershipRecord, error) {
	var records []model.OwnershipRecord
	err := r.db.Preload("Owner").
		Where("masterpiece_id = ?", masterpieceID).
		Order("transferred_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *masterpieceRepository) CreateWaitlistEntry(entry *model.WaitlistEntry) error {
	var count int64
	if err := r.db.Model(&model.WaitlistEntry{}).
		Where("masterpiece_id = ?", entry.MasterpieceID).
		Count(&count).Error; err != nil {
		return err
	}
	entry.Position = int(count) + 1
	return r.db.Create(entry).Error
}

func (r *masterpieceRepository) FindWaitlist(masterpieceID uint) ([]model.WaitlistEntry, error) {
	var entries []model.WaitlistEntry
	err := r.db.Where("masterpiece_id = ?", masterpieceID).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *masterpieceRepository) DeleteWaitlistEntry(masterpieceID, userID uint) error {
	return r.db.Where("masterpiece_id = ? AND user_id = ?", masterpieceID, userID).
		Delete(&model.WaitlistEntry{}).Error
}

func (r *masterpieceRepository) CreateReservation(reservation *model.Reservation) error {
	return r.db.Create(reservation).Error
}

func (r *masterpieceRepository) FindActiveReservation(masterpieceID uint) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.db.Where("masterpiece_id = ? AND status = ?", masterpieceID, model.ReservationActive).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *masterpieceRepository) UpdateReservation(reservation *model.Reservation) error {
	return r.db.Save(reservation).Error
}

func (r *masterpieceRepository) CreateMoment(moment *model.AtelierMoment) error {
	return r.db.Create(moment).Error
}

func (r *masterpieceRepository) ListMoments(masterpieceID *uint, limit int) ([]model.AtelierMoment, error) {
	var moments []model.AtelierMoment
	query := r.db.Order("created_at DESC")
	if masterpieceID != nil {
		query = query.Where("masterpiece_id = ?", *masterpieceID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&moments).Error; err != nil {
		return nil, err
	}
	return moments, nil
}
