package repository

import (
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type CertificateRepository interface {
	Create(tx *gorm.DB, cert *model.Certificate) error
	FindByID(id uint) (*model.Certificate, error)
	FindByToken(token string) (*model.Certificate, error)
	FindByMasterpiece(masterpieceID uint) (*model.Certificate, error)
	FindByOwner(ownerID uint) ([]model.Certificate, error)
	Update(cert *model.Certificate) error
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(tx *gorm.DB, cert *model.Certificate) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(cert).Error
}

func (r *certificateRepository) FindByID(id uint) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.db.Preload("Masterpiece").First(&cert, id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) FindByToken(token string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.db.Preload("Masterpiece").
		Where("verification_token = ?", token).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) FindByMasterpiece(masterpieceID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.db.Where("masterpiece_id = ?", masterpieceID).
		Order("issued_at DESC").
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) FindByOwner(ownerID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.db.Preload("Masterpiece").
		Where("owner_id = ?", ownerID).
		Order("issued_at DESC").
		Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *certificateRepository) Update(cert *model.Certificate) error {
	return r.db.Save(cert).Error
}
