package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrContractAlreadySigned = errors.New("contract has already been signed")
	ErrNotContractBuyer      = errors.New("only the buyer may sign this contract")
	ErrEmptySignature        = errors.New("signature name is required")
)

type ContractService interface {
	Get(contractID uint) (*model.Contract, error)
	ListByWorkflow(workflowID uint) ([]model.Contract, error)
	ListByBuyer(buyerID uint) ([]model.Contract, error)
	Sign(contractID, buyerID uint, signatureName string) (*model.Contract, error)
}

type contractService struct {
	contractRepo   repository.ContractRepository
	provenanceRepo repository.ProvenanceRepository
	auth           AuthService
	notifications  NotificationService
	hub            *websocket.Hub
}

func NewContractService(contractRepo repository.ContractRepository, provenanceRepo repository.ProvenanceRepository, auth AuthService, notifications NotificationService, hub *websocket.Hub) ContractService {
	return &contractService{
		contractRepo:   contractRepo,
		provenanceRepo: provenanceRepo,
		auth:           auth,
		notifications:  notifications,
		hub:            hub,
	}
}

func (s *contractService) Get(contractID uint) (*model.Contract, error) {
	contract, err := s.contractRepo.FindByID(contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return contract, nil
}

// ListByWorkflow returns the contract lineage of a workflow, deposit
// through certificate, oldest first.
func (s *contractService) ListByWorkflow(workflowID uint) ([]model.Contract, error) {
	return s.contractRepo.FindByWorkflow(workflowID)
}

func (s *contractService) ListByBuyer(buyerID uint) ([]model.Contract, error) {
	return s.contractRepo.FindByBuyer(buyerID)
}

// Sign records the buyer's typed signature. Signing a vip agreement
// promotes the collector to vip clientele; other contract types leave
// the role alone.
func (s *contractService) Sign(contractID, buyerID uint, signatureName string) (*model.Contract, error) {
	signatureName = strings.TrimSpace(signatureName)
	if signatureName == "" {
		return nil, ErrEmptySignature
	}

	contract, err := s.contractRepo.FindByID(contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	if contract.BuyerID != buyerID {
		return nil, ErrNotContractBuyer
	}
	if contract.Status != model.ContractDraft {
		return nil, ErrContractAlreadySigned
	}

	now := time.Now()
	contract.Status = model.ContractSigned
	contract.SignatureName = signatureName
	contract.SignedAt = &now
	if err := s.contractRepo.Update(contract); err != nil {
		return nil, err
	}

	if contract.Type == model.ContractVIP {
		if err := s.auth.PromoteToVIP(buyerID); err != nil {
			logger.Error("Failed to promote buyer after signing", err, map[string]interface{}{
				"buyer_id": buyerID,
			})
		}
	}

	if err := s.provenanceRepo.CreateAuditLog(&model.AuditLog{
		ActorID:  &buyerID,
		Action:   "contract_signed",
		Entity:   "contract",
		EntityID: contract.ID,
		Detail:   contract.Reference,
	}); err != nil {
		logger.Error("Failed to write audit log", err, nil)
	}

	message := fmt.Sprintf("Agreement %s has been signed.", contract.Reference)
	if contract.Type == model.ContractVIP {
		message = fmt.Sprintf("Agreement %s has been signed. Welcome to our vip clientele.", contract.Reference)
	}
	s.notifications.Notify(buyerID, model.NotifyContractSigned,
		"Contract signed", message,
		fmt.Sprintf("/contracts/%d", contract.ID))
	if s.hub != nil {
		s.hub.SendToUser(buyerID, websocket.EventContractSigned, contract)
	}

	logger.Info("Contract signed", map[string]interface{}{
		"contract_id": contract.ID,
		"buyer_id":    buyerID,
	})
	return contract, nil
}
