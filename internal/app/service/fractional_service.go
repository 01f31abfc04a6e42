package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

var (
	ErrSharesOversubscribed = errors.New("issued shares would exceed 100 percent")
	ErrInsufficientShares   = errors.New("holder does not own enough shares")
	ErrInvalidShareAmount   = errors.New("share percentage must be between 0 and 100")
	ErrShareNotFound        = errors.New("no shareholding found")
)

type FractionalService interface {
	IssueShares(masterpieceID, holderID uint, percentage float64, adminID uint) (*model.FractionalShare, error)
	Transfer(masterpieceID, fromID, toID uint, percentage, price float64) (*model.FractionalTransfer, error)
	GetHoldings(masterpieceID uint) ([]model.FractionalShare, error)
	GetTransfers(masterpieceID uint) ([]model.FractionalTransfer, error)
	Revenue(source string) ([]model.RevenueEntry, error)
	TotalRevenue() (float64, error)
}

type fractionalService struct {
	db              *gorm.DB
	fractionalRepo  repository.FractionalRepository
	masterpieceRepo repository.MasterpieceRepository
	provenanceRepo  repository.ProvenanceRepository
}

func NewFractionalService(db *gorm.DB, fractionalRepo repository.FractionalRepository, masterpieceRepo repository.MasterpieceRepository, provenanceRepo repository.ProvenanceRepository) FractionalService {
	return &fractionalService{
		db:              db,
		fractionalRepo:  fractionalRepo,
		masterpieceRepo: masterpieceRepo,
		provenanceRepo:  provenanceRepo,
	}
}

// IssueShares allocates a stake in a piece to an investor. The sum of
// all outstanding shares may never pass 100 percent, enforced under a
// lock on the piece row.
func (s *fractionalService) IssueShares(masterpieceID, holderID uint, percentage float64, adminID uint) (*model.FractionalShare, error) {
	if percentage <= 0 || percentage > 100 {
		return nil, ErrInvalidShareAmount
	}

	var share *model.FractionalShare

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if _, err := s.masterpieceRepo.FindByIDForUpdate(tx, masterpieceID); err != nil {
		tx.Rollback()
		return nil, ErrMasterpieceNotFound
	}

	issued, err := s.fractionalRepo.SumShares(tx, masterpieceID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if issued+percentage > 100 {
		tx.Rollback()
		return nil, ErrSharesOversubscribed
	}

	existing, err := s.fractionalRepo.FindShare(masterpieceID, holderID)
	switch {
	case err == nil:
		existing.Percentage += percentage
		if err := s.fractionalRepo.UpdateShare(tx, existing); err != nil {
			tx.Rollback()
			return nil, err
		}
		share = existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		share = &model.FractionalShare{
			MasterpieceID: masterpieceID,
			HolderID:      holderID,
			Percentage:    percentage,
			AcquiredAt:    time.Now(),
		}
		if err := s.fractionalRepo.CreateShare(tx, share); err != nil {
			tx.Rollback()
			return nil, err
		}
	default:
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Fractional shares issued", map[string]interface{}{
		"masterpiece_id": masterpieceID,
		"holder_id":      holderID,
		"percentage":     percentage,
		"admin_id":       adminID,
	})
	return share, nil
}

// Transfer moves a stake between holders. The sender must hold at
// least the transferred percentage.
func (s *fractionalService) Transfer(masterpieceID, fromID, toID uint, percentage, price float64) (*model.FractionalTransfer, error) {
	if percentage <= 0 || percentage > 100 {
		return nil, ErrInvalidShareAmount
	}
	if fromID == toID {
		return nil, fmt.Errorf("cannot transfer shares to yourself")
	}

	var transfer *model.FractionalTransfer

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if _, err := s.masterpieceRepo.FindByIDForUpdate(tx, masterpieceID); err != nil {
		tx.Rollback()
		return nil, ErrMasterpieceNotFound
	}

	sender, err := s.fractionalRepo.FindShare(masterpieceID, fromID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	if sender.Percentage < percentage {
		tx.Rollback()
		return nil, ErrInsufficientShares
	}

	sender.Percentage -= percentage
	if sender.Percentage == 0 {
		if err := s.fractionalRepo.DeleteShare(tx, sender.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		if err := s.fractionalRepo.UpdateShare(tx, sender); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	receiver, err := s.fractionalRepo.FindShare(masterpieceID, toID)
	switch {
	case err == nil:
		receiver.Percentage += percentage
		if err := s.fractionalRepo.UpdateShare(tx, receiver); err != nil {
			tx.Rollback()
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.fractionalRepo.CreateShare(tx, &model.FractionalShare{
			MasterpieceID: masterpieceID,
			HolderID:      toID,
			Percentage:    percentage,
			AcquiredAt:    time.Now(),
		}); err != nil {
			tx.Rollback()
			return nil, err
		}
	default:
		tx.Rollback()
		return nil, err
	}

	transfer = &model.FractionalTransfer{
		MasterpieceID: masterpieceID,
		FromID:        fromID,
		ToID:          toID,
		Percentage:    percentage,
		Price:         price,
	}
	if err := s.fractionalRepo.CreateTransfer(tx, transfer); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Fractional shares transferred", map[string]interface{}{
		"masterpiece_id": masterpieceID,
		"from_id":        fromID,
		"to_id":          toID,
		"percentage":     percentage,
	})
	return transfer, nil
}

func (s *fractionalService) GetHoldings(masterpieceID uint) ([]model.FractionalShare, error) {
	return s.fractionalRepo.FindShares(masterpieceID)
}

func (s *fractionalService) GetTransfers(masterpieceID uint) ([]model.FractionalTransfer, error) {
	return s.fractionalRepo.FindTransfers(masterpieceID)
}

func (s *fractionalService) Revenue(source string) ([]model.RevenueEntry, error) {
	return s.fractionalRepo.ListRevenue(source)
}

func (s *fractionalService) TotalRevenue() (float64, error) {
	return s.fractionalRepo.SumRevenue()
}
