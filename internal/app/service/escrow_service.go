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
	ErrEscrowNotFound      = errors.New("escrow transaction not found")
	ErrEscrowNotHeld       = errors.New("escrow is not in the held state")
	ErrEscrowWindowClosed  = errors.New("the dispute window has closed")
	ErrEscrowAlreadyClosed = errors.New("escrow has already been settled")
	ErrNotEscrowBuyer      = errors.New("only the buyer may dispute this escrow")
)

type EscrowService interface {
	Get(escrowID uint) (*model.EscrowTransaction, error)
	List(status string) ([]model.EscrowTransaction, error)
	Dispute(escrowID, buyerID uint, reason string) (*model.EscrowTransaction, error)
	Resolve(escrowID, adminID uint, release bool) (*model.EscrowTransaction, error)
	SweepExpired(now time.Time) (int, error)
}

type escrowService struct {
	db            *gorm.DB
	escrowRepo    repository.EscrowRepository
	workflowRepo  repository.WorkflowRepository
	notifications NotificationService
}

func NewEscrowService(db *gorm.DB, escrowRepo repository.EscrowRepository, workflowRepo repository.WorkflowRepository, notifications NotificationService) EscrowService {
	return &escrowService{
		db:            db,
		escrowRepo:    escrowRepo,
		workflowRepo:  workflowRepo,
		notifications: notifications,
	}
}

func (s *escrowService) Get(escrowID uint) (*model.EscrowTransaction, error) {
	escrow, err := s.escrowRepo.FindByID(escrowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	return escrow, nil
}

func (s *escrowService) List(status string) ([]model.EscrowTransaction, error) {
	return s.escrowRepo.List(status)
}

// Dispute freezes a held escrow. Only the buyer may raise a dispute,
// and only while the dispute window is still open.
func (s *escrowService) Dispute(escrowID, buyerID uint, reason string) (*model.EscrowTransaction, error) {
	var escrow *model.EscrowTransaction

	err := s.transact(func(tx *gorm.DB) error {
		var err error
		escrow, err = s.escrowRepo.FindByIDForUpdate(tx, escrowID)
		if err != nil {
			return ErrEscrowNotFound
		}
		if escrow.BuyerID != buyerID {
			return ErrNotEscrowBuyer
		}
		if escrow.Status != model.EscrowHeld {
			return ErrEscrowNotHeld
		}
		if time.Now().After(escrow.WindowEndsAt) {
			return ErrEscrowWindowClosed
		}

		now := time.Now()
		escrow.Status = model.EscrowDisputed
		escrow.DisputedAt = &now
		escrow.DisputeReason = reason
		return s.escrowRepo.Update(tx, escrow)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Escrow disputed", map[string]interface{}{
		"escrow_id": escrow.ID,
		"buyer_id":  buyerID,
	})
	return escrow, nil
}

// Resolve settles a disputed escrow. release=true pays out the atelier,
// release=false refunds the buyer.
func (s *escrowService) Resolve(escrowID, adminID uint, release bool) (*model.EscrowTransaction, error) {
	var escrow *model.EscrowTransaction

	err := s.transact(func(tx *gorm.DB) error {
		var err error
		escrow, err = s.escrowRepo.FindByIDForUpdate(tx, escrowID)
		if err != nil {
			return ErrEscrowNotFound
		}
		if escrow.Status != model.EscrowDisputed {
			return ErrEscrowAlreadyClosed
		}

		now := time.Now()
		escrow.ResolvedByID = &adminID
		if release {
			escrow.Status = model.EscrowReleased
			escrow.ReleasedAt = &now
		} else {
			escrow.Status = model.EscrowRefunded
			escrow.RefundedAt = &now
		}
		return s.escrowRepo.Update(tx, escrow)
	})
	if err != nil {
		return nil, err
	}

	if release {
		s.notifications.Notify(escrow.BuyerID, model.NotifyEscrowReleased,
			"Dispute resolved",
			"Your dispute has been reviewed and the held funds were released to the atelier.",
			fmt.Sprintf("/escrow/%d", escrow.ID))
	} else {
		s.notifications.Notify(escrow.BuyerID, model.NotifyEscrowReleased,
			"Dispute resolved",
			"Your dispute has been reviewed and the held funds will be refunded to you.",
			fmt.Sprintf("/escrow/%d", escrow.ID))
	}
	return escrow, nil
}

// SweepExpired releases every held purchase escrow whose dispute
// window has passed, provided the piece was delivered. Called by the
// scheduler. Returns the number of escrows released.
func (s *escrowService) SweepExpired(now time.Time) (int, error) {
	expired, err := s.escrowRepo.FindExpiredHeld(now)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range expired {
		id := expired[i].ID
		err := s.transact(func(tx *gorm.DB) error {
			escrow, err := s.escrowRepo.FindByIDForUpdate(tx, id)
			if err != nil {
				return err
			}
			if escrow.Status != model.EscrowHeld {
				return nil // disputed or settled since the query
			}
			if escrow.WorkflowID != nil {
				workflow, err := s.workflowRepo.FindByID(*escrow.WorkflowID)
				if err != nil {
					return err
				}
				// Funds stay held until the piece is at least delivered
				switch workflow.Status {
				case model.WorkflowDelivered, model.WorkflowCompleted:
				default:
					return nil
				}
			}

			ts := time.Now()
			escrow.Status = model.EscrowReleased
			escrow.ReleasedAt = &ts
			if err := s.escrowRepo.Update(tx, escrow); err != nil {
				return err
			}
			released++

			s.notifications.Notify(escrow.BuyerID, model.NotifyEscrowReleased,
				"Escrow released",
				"The dispute window has closed and your payment has been released to the atelier.",
				fmt.Sprintf("/escrow/%d", escrow.ID))
			return nil
		})
		if err != nil {
			logger.Error("Failed to sweep escrow", err, map[string]interface{}{
				"escrow_id": id,
			})
		}
	}

	if released > 0 {
		logger.Info("Escrow sweep completed", map[string]interface{}{
			"released": released,
		})
	}
	return released, nil
}

func (s *escrowService) transact(fn func(tx *gorm.DB) error) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
