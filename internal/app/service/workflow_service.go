package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/storage"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/docref"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/document"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/minting"
)

var (
	ErrWorkflowNotFound     = errors.New("purchase workflow not found")
	ErrWorkflowExists       = errors.New("an active purchase already exists for this masterpiece")
	ErrWorkflowClosed       = errors.New("workflow is already closed")
	ErrInvalidStep          = errors.New("unknown workflow step")
	ErrStepOutOfOrder       = errors.New("step is not valid from the current state")
	ErrNotWorkflowBuyer     = errors.New("only the buyer may act on this workflow")
	ErrEscrowUnderDispute   = errors.New("escrow is under dispute")
	ErrPurchaseNotRequested = errors.New("no pending purchase request for this masterpiece")
	ErrDepositNotSigned     = errors.New("the deposit contract has not been signed")
)

// stepTransitions maps each step command to the state it requires and
// the state it produces. Anything else is out of order.
var stepTransitions = map[model.WorkflowStep]struct {
	from model.WorkflowStatus
	to   model.WorkflowStatus
}{
	model.StepDepositPaid:        {model.WorkflowReserved, model.WorkflowProductionStarted},
	model.StepProductionFinished: {model.WorkflowProductionStarted, model.WorkflowAwaitingFinal},
	model.StepFinalPaymentPaid:   {model.WorkflowAwaitingFinal, model.WorkflowFundsHeld},
	model.StepDelivered:          {model.WorkflowFundsHeld, model.WorkflowDelivered},
	model.StepCompleted:          {model.WorkflowDelivered, model.WorkflowCompleted},
}

type WorkflowService interface {
	RequestPurchase(masterpieceID, buyerID uint, buyerRole model.UserRole) (*model.Contract, error)
	Approve(masterpieceID, adminID uint) (*model.PurchaseWorkflow, error)
	Reject(masterpieceID, adminID uint, reason string) (*model.Contract, error)
	AdvanceStep(workflowID uint, step model.WorkflowStep, actorID uint) (*model.PurchaseWorkflow, error)
	Cancel(workflowID, actorID uint, isAdmin bool) (*model.PurchaseWorkflow, error)
	Get(workflowID uint) (*model.PurchaseWorkflow, error)
	ListByBuyer(buyerID uint) ([]model.PurchaseWorkflow, error)
	List(status string) ([]model.PurchaseWorkflow, error)
	ListPayments(workflowID uint) ([]model.Payment, error)
	ListPaymentsByPayer(payerID uint) ([]model.Payment, error)
}

type workflowService struct {
	db              *gorm.DB
	workflowRepo    repository.WorkflowRepository
	masterpieceRepo repository.MasterpieceRepository
	paymentRepo     repository.PaymentRepository
	contractRepo    repository.ContractRepository
	escrowRepo      repository.EscrowRepository
	certificateRepo repository.CertificateRepository
	provenanceRepo  repository.ProvenanceRepository
	fractionalRepo  repository.FractionalRepository
	userRepo        repository.UserRepository
	notifications   NotificationService
	refs            docref.Generator
	renderer        document.Renderer
	minter          minting.Minter
	archiver        storage.Archiver
	hub             *websocket.Hub
	cfg             *config.Config
}

func NewWorkflowService(
	db *gorm.DB,
	workflowRepo repository.WorkflowRepository,
	masterpieceRepo repository.MasterpieceRepository,
	paymentRepo repository.PaymentRepository,
	contractRepo repository.ContractRepository,
	escrowRepo repository.EscrowRepository,
	certificateRepo repository.CertificateRepository,
	provenanceRepo repository.ProvenanceRepository,
	fractionalRepo repository.FractionalRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	refs docref.Generator,
	renderer document.Renderer,
	minter minting.Minter,
	archiver storage.Archiver,
	hub *websocket.Hub,
	cfg *config.Config,
) WorkflowService {
	return &workflowService{
		db:              db,
		workflowRepo:    workflowRepo,
		masterpieceRepo: masterpieceRepo,
		paymentRepo:     paymentRepo,
		contractRepo:    contractRepo,
		escrowRepo:      escrowRepo,
		certificateRepo: certificateRepo,
		provenanceRepo:  provenanceRepo,
		fractionalRepo:  fractionalRepo,
		userRepo:        userRepo,
		notifications:   notifications,
		refs:            refs,
		renderer:        renderer,
		minter:          minter,
		archiver:        archiver,
		hub:             hub,
		cfg:             cfg,
	}
}

func (s *workflowService) atelier() document.Atelier {
	return document.Atelier{
		Name:     s.cfg.Atelier.Name,
		Director: s.cfg.Atelier.Director,
		Address:  s.cfg.Atelier.Address,
		BankIBAN: s.cfg.Atelier.BankIBAN,
	}
}

// depositSplit derives the deposit and balance from the valuation and
// deposit percentage in force right now. Every billing point calls it
// again, so a revaluation between approval and invoicing changes what
// the buyer owes.
func (s *workflowService) depositSplit(piece *model.Masterpiece) (deposit, balance float64) {
	pct := piece.DepositPct
	if pct <= 0 {
		pct = s.cfg.Policy.DefaultDepositPct
	}
	deposit = piece.Price * pct / 100
	return deposit, piece.Price - deposit
}

// RequestPurchase reserves an available piece and issues the deposit
// contract for the buyer to sign. No workflow exists yet; that row is
// created only when staff approve the signed request.
func (s *workflowService) RequestPurchase(masterpieceID, buyerID uint, buyerRole model.UserRole) (*model.Contract, error) {
	logger.Info("Purchase requested", map[string]interface{}{
		"masterpiece_id": masterpieceID,
		"buyer_id":       buyerID,
	})

	piece, err := s.masterpieceRepo.FindByID(masterpieceID)
	if err != nil {
		return nil, ErrMasterpieceNotFound
	}
	if piece.VIPOnly && !canSeeVIP(buyerRole) {
		return nil, ErrMasterpieceNotFound
	}

	switch piece.Status {
	case model.MasterpieceAvailable:
	case model.MasterpieceReserved:
		// A piece reserved for this buyer may be purchased by them
		if piece.ReservedByID == nil || *piece.ReservedByID != buyerID {
			return nil, ErrMasterpieceNotAvailable
		}
	default:
		return nil, ErrMasterpieceNotAvailable
	}

	if _, err := s.contractRepo.FindOpenDeposit(nil, masterpieceID); err == nil {
		return nil, ErrWorkflowExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.workflowRepo.FindActiveByMasterpiece(masterpieceID); err == nil {
		return nil, ErrWorkflowExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	buyer, err := s.userRepo.FindByID(buyerID)
	if err != nil {
		return nil, err
	}

	deposit, _ := s.depositSplit(piece)
	contractRef := s.refs.ContractReference()
	content, err := s.renderer.RenderContract(s.atelier(), document.Contract{
		Reference:    contractRef,
		BuyerName:    buyer.Name,
		BuyerEmail:   buyer.Email,
		PieceTitle:   piece.Title,
		SerialNumber: piece.SerialNumber,
		TotalPrice:   piece.Price,
		Terms: []string{
			fmt.Sprintf("A deposit of EUR %.2f falls due once the purchase is approved.", deposit),
			"The deposit is non-refundable once production has started.",
			"Ownership transfers on confirmation of full payment.",
			fmt.Sprintf("Final payment is held in escrow for %s after delivery.", s.cfg.Escrow.DisputeWindow),
			"Resale of the piece is subject to platform approval.",
		},
		IssuedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	contract := &model.Contract{
		MasterpieceID: masterpieceID,
		BuyerID:       buyerID,
		Type:          model.ContractDeposit,
		Reference:     contractRef,
		Content:       content,
		Status:        model.ContractDraft,
	}
	if err := s.contractRepo.Create(nil, contract); err != nil {
		return nil, err
	}

	piece.Status = model.MasterpieceReserved
	piece.ReservedByID = &buyerID
	if err := s.masterpieceRepo.Update(piece); err != nil {
		return nil, err
	}

	if reservation, err := s.masterpieceRepo.FindActiveReservation(masterpieceID); err == nil && reservation.UserID == buyerID {
		reservation.Status = model.ReservationConverted
		if err := s.masterpieceRepo.UpdateReservation(reservation); err != nil {
			logger.Error("Failed to mark reservation converted", err, map[string]interface{}{
				"reservation_id": reservation.ID,
			})
		}
	}

	s.audit(buyerID, "purchase_requested", "contract", contract.ID, contract.Reference)
	return contract, nil
}

// Approve turns a signed purchase request into a live workflow. The
// deposit is computed here, from the valuation and percentage in force
// at approval, and the deposit payment is opened in the same
// transaction. An unsigned contract blocks approval.
func (s *workflowService) Approve(masterpieceID, adminID uint) (*model.PurchaseWorkflow, error) {
	var (
		workflow   *model.PurchaseWorkflow
		depositDoc string
		depositRef string
	)

	err := s.inTransaction(func(tx *gorm.DB) error {
		piece, err := s.masterpieceRepo.FindByIDForUpdate(tx, masterpieceID)
		if err != nil {
			return ErrMasterpieceNotFound
		}

		if _, err := s.workflowRepo.FindActiveByMasterpiece(masterpieceID); err == nil {
			return ErrWorkflowExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		contract, err := s.contractRepo.FindOpenDeposit(tx, masterpieceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseNotRequested
			}
			return err
		}
		if contract.Status != model.ContractSigned {
			return ErrDepositNotSigned
		}

		buyer, err := s.userRepo.FindByID(contract.BuyerID)
		if err != nil {
			return err
		}

		deposit, balance := s.depositSplit(piece)
		depositRef = s.refs.DepositReference()
		depositDoc, err = s.renderer.RenderDepositReceipt(s.atelier(), document.DepositReceipt{
			Reference:      depositRef,
			BuyerName:      buyer.Name,
			BuyerEmail:     buyer.Email,
			PieceTitle:     piece.Title,
			SerialNumber:   piece.SerialNumber,
			TotalPrice:     piece.Price,
			DepositAmount:  deposit,
			DepositPercent: deposit / piece.Price * 100,
			IssuedAt:       time.Now(),
		})
		if err != nil {
			return err
		}

		now := time.Now()
		workflow = &model.PurchaseWorkflow{
			MasterpieceID:   masterpieceID,
			BuyerID:         buyer.ID,
			Status:          model.WorkflowReserved,
			TotalPrice:      piece.Price,
			DepositAmount:   deposit,
			RemainingAmount: balance,
			DepositRef:      depositRef,
			ApprovedByID:    &adminID,
			ApprovedAt:      &now,
		}
		if err := s.workflowRepo.CreateWithTx(tx, workflow); err != nil {
			return err
		}

		contract.WorkflowID = &workflow.ID
		if err := s.contractRepo.UpdateWithTx(tx, contract); err != nil {
			return err
		}

		payment := &model.Payment{
			WorkflowID:    &workflow.ID,
			MasterpieceID: piece.ID,
			PayerID:       buyer.ID,
			Kind:          model.PaymentDeposit,
			Amount:        deposit,
			Reference:     depositRef,
			State:         model.PaymentAwaitingDeposit,
		}
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return err
		}

		piece.Status = model.MasterpieceReserved
		piece.ReservedByID = &buyer.ID
		return s.masterpieceRepo.UpdateWithTx(tx, piece)
	})
	if err != nil {
		return nil, err
	}

	s.archiveDocument("deposits", depositRef, depositDoc)
	s.audit(adminID, "purchase_approved", "workflow", workflow.ID, "")
	s.notifications.Notify(workflow.BuyerID, model.NotifyPurchaseReviewed,
		"Purchase request approved",
		fmt.Sprintf("Your purchase request has been approved. Deposit instruction %s has been issued.", depositRef),
		fmt.Sprintf("/workflows/%d", workflow.ID))
	if s.hub != nil {
		s.hub.SendToUser(workflow.BuyerID, websocket.EventPurchaseReviewed, workflow)
	}
	return workflow, nil
}

// Reject declines a pending request. The deposit contract is voided
// and the piece returns to the catalog; no workflow row is created.
func (s *workflowService) Reject(masterpieceID, adminID uint, reason string) (*model.Contract, error) {
	var contract *model.Contract

	err := s.inTransaction(func(tx *gorm.DB) error {
		piece, err := s.masterpieceRepo.FindByIDForUpdate(tx, masterpieceID)
		if err != nil {
			return ErrMasterpieceNotFound
		}

		if _, err := s.workflowRepo.FindActiveByMasterpiece(masterpieceID); err == nil {
			return ErrWorkflowExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		contract, err = s.contractRepo.FindOpenDeposit(tx, masterpieceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseNotRequested
			}
			return err
		}

		contract.Status = model.ContractVoid
		if err := s.contractRepo.UpdateWithTx(tx, contract); err != nil {
			return err
		}

		piece.Status = model.MasterpieceAvailable
		piece.ReservedByID = nil
		return s.masterpieceRepo.UpdateWithTx(tx, piece)
	})
	if err != nil {
		return nil, err
	}

	s.audit(adminID, "purchase_rejected", "contract", contract.ID, reason)
	s.notifications.Notify(contract.BuyerID, model.NotifyPurchaseReviewed,
		"Purchase request declined",
		"We are unable to proceed with your purchase request at this time.",
		fmt.Sprintf("/masterpieces/%d", masterpieceID))
	if s.hub != nil {
		s.hub.SendToUser(contract.BuyerID, websocket.EventPurchaseReviewed, contract)
	}
	return contract, nil
}

// AdvanceStep runs one step command. Each step is one transaction over
// the locked workflow and masterpiece rows, so concurrent commands for
// the same workflow serialize and out-of-order commands fail cleanly.
func (s *workflowService) AdvanceStep(workflowID uint, step model.WorkflowStep, actorID uint) (*model.PurchaseWorkflow, error) {
	transition, ok := stepTransitions[step]
	if !ok {
		return nil, ErrInvalidStep
	}

	logger.Info("Advancing workflow step", map[string]interface{}{
		"workflow_id": workflowID,
		"step":        step,
	})

	var (
		workflow    *model.PurchaseWorkflow
		invoiceDoc  string
		invoiceRef  string
		certificate *model.Certificate
	)

	err := s.inTransaction(func(tx *gorm.DB) error {
		var err error
		workflow, err = s.workflowRepo.FindByIDForUpdate(tx, workflowID)
		if err != nil {
			return ErrWorkflowNotFound
		}
		if workflow.IsClosed() {
			return ErrWorkflowClosed
		}
		if workflow.Status != transition.from {
			return ErrStepOutOfOrder
		}

		piece, err := s.masterpieceRepo.FindByIDForUpdate(tx, workflow.MasterpieceID)
		if err != nil {
			return err
		}

		switch step {
		case model.StepDepositPaid:
			if err := s.confirmPayment(tx, workflow.ID, model.PaymentDeposit, actorID); err != nil {
				return err
			}

		case model.StepProductionFinished:
			invoiceRef, invoiceDoc, err = s.issueInvoice(tx, workflow, piece)
			if err != nil {
				return err
			}

		case model.StepFinalPaymentPaid:
			if err := s.confirmPayment(tx, workflow.ID, model.PaymentFinal, actorID); err != nil {
				return err
			}
			now := time.Now()
			escrow := &model.EscrowTransaction{
				WorkflowID:   &workflow.ID,
				BuyerID:      workflow.BuyerID,
				Amount:       workflow.RemainingAmount,
				Status:       model.EscrowHeld,
				Source:       model.EscrowFromPurchase,
				HeldAt:       now,
				WindowEndsAt: now.Add(s.cfg.Escrow.DisputeWindow),
			}
			if err := s.escrowRepo.Create(tx, escrow); err != nil {
				return err
			}

		case model.StepDelivered:
			// Nothing beyond the state change; delivery details are
			// tracked by the logistics service.

		case model.StepCompleted:
			certificate, err = s.complete(tx, workflow, piece, actorID)
			if err != nil {
				return err
			}
		}

		workflow.Status = transition.to
		return s.workflowRepo.UpdateWithTx(tx, workflow)
	})
	if err != nil {
		return nil, err
	}

	if invoiceRef != "" {
		s.archiveDocument("invoices", invoiceRef, invoiceDoc)
	}

	s.afterStep(workflow, step, certificate)
	return workflow, nil
}

// issueInvoice opens the balance payment once production finishes. The
// balance is the current valuation less the deposit share at today's
// percentage, so a revaluation during production reprices the invoice.
// The invoice contract descends from the deposit contract.
func (s *workflowService) issueInvoice(tx *gorm.DB, workflow *model.PurchaseWorkflow, piece *model.Masterpiece) (string, string, error) {
	buyer, err := s.userRepo.FindByID(workflow.BuyerID)
	if err != nil {
		return "", "", err
	}

	deposit, balance := s.depositSplit(piece)
	workflow.TotalPrice = piece.Price
	workflow.DepositAmount = deposit
	workflow.RemainingAmount = balance

	invoiceRef := s.refs.InvoiceReference()
	invoiceDoc, err := s.renderer.RenderInvoice(s.atelier(), document.Invoice{
		Reference:       invoiceRef,
		DepositRef:      workflow.DepositRef,
		BuyerName:       buyer.Name,
		BuyerEmail:      buyer.Email,
		PieceTitle:      piece.Title,
		SerialNumber:    piece.SerialNumber,
		TotalPrice:      workflow.TotalPrice,
		DepositPaid:     deposit,
		RemainingAmount: balance,
		IssuedAt:        time.Now(),
	})
	if err != nil {
		return "", "", err
	}

	invoice := &model.Contract{
		WorkflowID:    &workflow.ID,
		MasterpieceID: piece.ID,
		BuyerID:       workflow.BuyerID,
		Type:          model.ContractInvoice,
		Reference:     invoiceRef,
		Content:       invoiceDoc,
		Status:        model.ContractDraft,
	}
	if depositContract, err := s.contractRepo.FindByWorkflowAndType(tx, workflow.ID, model.ContractDeposit); err == nil {
		invoice.ParentID = &depositContract.ID
	}
	if err := s.contractRepo.Create(tx, invoice); err != nil {
		return "", "", err
	}

	payment := &model.Payment{
		WorkflowID:    &workflow.ID,
		MasterpieceID: piece.ID,
		PayerID:       workflow.BuyerID,
		Kind:          model.PaymentFinal,
		Amount:        balance,
		Reference:     invoiceRef,
		State:         model.PaymentAwaitingPayment,
	}
	if err := s.paymentRepo.Create(tx, payment); err != nil {
		return "", "", err
	}
	workflow.InvoiceRef = invoiceRef

	return invoiceRef, invoiceDoc, nil
}

// complete releases escrow, transfers ownership, and issues the
// certificate of authenticity. Runs inside the step transaction.
func (s *workflowService) complete(tx *gorm.DB, workflow *model.PurchaseWorkflow, piece *model.Masterpiece, actorID uint) (*model.Certificate, error) {
	escrow, err := s.escrowRepo.FindByWorkflow(workflow.ID)
	if err != nil {
		return nil, err
	}
	escrow, err = s.escrowRepo.FindByIDForUpdate(tx, escrow.ID)
	if err != nil {
		return nil, err
	}

	switch escrow.Status {
	case model.EscrowHeld:
		now := time.Now()
		escrow.Status = model.EscrowReleased
		escrow.ReleasedAt = &now
		if err := s.escrowRepo.Update(tx, escrow); err != nil {
			return nil, err
		}
	case model.EscrowReleased:
		// Already released by the sweeper, fine
	case model.EscrowDisputed:
		return nil, ErrEscrowUnderDispute
	default:
		return nil, ErrEscrowUnderDispute
	}

	now := time.Now()
	piece.Status = model.MasterpieceSold
	piece.CurrentOwnerID = &workflow.BuyerID
	piece.ReservedByID = nil
	if err := s.masterpieceRepo.UpdateWithTx(tx, piece); err != nil {
		return nil, err
	}

	record := &model.OwnershipRecord{
		MasterpieceID: piece.ID,
		OwnerID:       workflow.BuyerID,
		AcquiredVia:   "purchase",
		Price:         workflow.TotalPrice,
		TransferredAt: now,
	}
	if err := s.masterpieceRepo.CreateOwnershipRecord(tx, record); err != nil {
		return nil, err
	}

	if err := s.fractionalRepo.CreateRevenueEntry(tx, &model.RevenueEntry{
		MasterpieceID: &piece.ID,
		Source:        model.RevenueSale,
		Amount:        workflow.TotalPrice,
		Reference:     workflow.InvoiceRef,
	}); err != nil {
		return nil, err
	}

	if err := s.provenanceRepo.CreateEvent(tx, &model.ProvenanceEvent{
		MasterpieceID: piece.ID,
		EventType:     "sold",
		Title:         "Acquired by a private collector",
		OccurredAt:    now,
		RecordedByID:  &actorID,
	}); err != nil {
		return nil, err
	}

	buyer, err := s.userRepo.FindByID(workflow.BuyerID)
	if err != nil {
		return nil, err
	}

	certNumber := s.refs.CertificateNumber(now.Year())
	token := s.refs.VerificationToken()
	content, err := s.renderer.RenderCertificate(s.atelier(), document.Certificate{
		Number:            certNumber,
		VerificationToken: token,
		OwnerName:         buyer.Name,
		PieceTitle:        piece.Title,
		SerialNumber:      piece.SerialNumber,
		Materials:         []string(piece.Materials),
		Gemstones:         []string(piece.Gemstones),
		Edition:           string(piece.Edition),
		RarityScore:       piece.RarityScore,
		IssuedAt:          now,
	})
	if err != nil {
		return nil, err
	}

	// The certificate is countersigned by the house, not the buyer,
	// so the contract record is born signed.
	certContract := &model.Contract{
		WorkflowID:    &workflow.ID,
		MasterpieceID: piece.ID,
		BuyerID:       workflow.BuyerID,
		Type:          model.ContractCertificate,
		Reference:     certNumber,
		Content:       content,
		Status:        model.ContractSigned,
		SignatureName: s.cfg.Atelier.Director,
		SignedAt:      &now,
	}
	if invoice, err := s.contractRepo.FindByWorkflowAndType(tx, workflow.ID, model.ContractInvoice); err == nil {
		certContract.ParentID = &invoice.ID
	}
	if err := s.contractRepo.Create(tx, certContract); err != nil {
		return nil, err
	}

	certificate := &model.Certificate{
		MasterpieceID:     piece.ID,
		OwnerID:           workflow.BuyerID,
		Number:            certNumber,
		VerificationToken: token,
		Content:           content,
		RarityScore:       piece.RarityScore,
		IssuedAt:          now,
	}
	if err := s.certificateRepo.Create(tx, certificate); err != nil {
		return nil, err
	}

	workflow.CompletedAt = &now
	return certificate, nil
}

// afterStep delivers notifications and live events once the step
// transaction has committed.
func (s *workflowService) afterStep(workflow *model.PurchaseWorkflow, step model.WorkflowStep, certificate *model.Certificate) {
	if s.hub != nil {
		s.hub.SendToUser(workflow.BuyerID, websocket.EventWorkflowUpdated, workflow)
	}

	switch step {
	case model.StepDepositPaid:
		s.notifications.Notify(workflow.BuyerID, model.NotifyPaymentConfirmed,
			"Deposit received",
			"Your deposit has been confirmed and production has started.",
			fmt.Sprintf("/workflows/%d", workflow.ID))
	case model.StepProductionFinished:
		s.notifications.Notify(workflow.BuyerID, model.NotifyWorkflowUpdated,
			"Your piece is finished",
			fmt.Sprintf("Production is complete. Final invoice %s has been issued.", workflow.InvoiceRef),
			fmt.Sprintf("/workflows/%d", workflow.ID))
	case model.StepFinalPaymentPaid:
		s.notifications.Notify(workflow.BuyerID, model.NotifyPaymentConfirmed,
			"Final payment received",
			"Your final payment has been received and is held in escrow until delivery is confirmed.",
			fmt.Sprintf("/workflows/%d", workflow.ID))
	case model.StepDelivered:
		s.notifications.Notify(workflow.BuyerID, model.NotifyDeliveryUpdate,
			"Your piece has been delivered",
			"Please confirm completion once you have inspected your piece.",
			fmt.Sprintf("/workflows/%d", workflow.ID))
	case model.StepCompleted:
		s.notifications.Notify(workflow.BuyerID, model.NotifyCertificateIssued,
			"Certificate of authenticity issued",
			fmt.Sprintf("Certificate %s has been issued for your masterpiece.", certificate.Number),
			fmt.Sprintf("/certificates/%d", certificate.ID))
		if s.hub != nil {
			s.hub.SendToUser(workflow.BuyerID, websocket.EventCertificateIssued, certificate)
		}
		s.archiveDocument("certificates", certificate.Number, certificate.Content)
		go s.mintToken(certificate)
	}
}

// mintToken mints the digital ownership token in the background and
// attaches it to the certificate.
func (s *workflowService) mintToken(certificate *model.Certificate) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	piece, err := s.masterpieceRepo.FindByID(certificate.MasterpieceID)
	if err != nil {
		logger.Error("Failed to load masterpiece for minting", err, map[string]interface{}{
			"certificate_id": certificate.ID,
		})
		return
	}

	result, err := s.minter.Mint(ctx, minting.MintRequest{
		CertificateNumber: certificate.Number,
		SerialNumber:      piece.SerialNumber,
		OwnerID:           certificate.OwnerID,
	})
	if err != nil {
		logger.Error("Token minting failed", err, map[string]interface{}{
			"certificate_id": certificate.ID,
		})
		return
	}

	certificate.TokenID = result.TokenID
	certificate.TokenTxHash = result.TransactionHash
	certificate.TokenContract = result.ContractAddress
	certificate.MintedAt = &result.MintedAt
	if err := s.certificateRepo.Update(certificate); err != nil {
		logger.Error("Failed to store minted token", err, map[string]interface{}{
			"certificate_id": certificate.ID,
		})
		return
	}

	s.notifications.Notify(certificate.OwnerID, model.NotifyTokenMinted,
		"Digital token minted",
		fmt.Sprintf("A digital ownership token has been minted for certificate %s.", certificate.Number),
		fmt.Sprintf("/certificates/%d", certificate.ID))
	if s.hub != nil {
		s.hub.SendToUser(certificate.OwnerID, websocket.EventTokenMinted, certificate)
	}
}

// Cancel aborts a workflow before funds are held. The piece returns to
// the catalog.
func (s *workflowService) Cancel(workflowID, actorID uint, isAdmin bool) (*model.PurchaseWorkflow, error) {
	var workflow *model.PurchaseWorkflow

	err := s.inTransaction(func(tx *gorm.DB) error {
		var err error
		workflow, err = s.workflowRepo.FindByIDForUpdate(tx, workflowID)
		if err != nil {
			return ErrWorkflowNotFound
		}
		if !isAdmin && workflow.BuyerID != actorID {
			return ErrNotWorkflowBuyer
		}
		if workflow.IsClosed() {
			return ErrWorkflowClosed
		}

		switch workflow.Status {
		case model.WorkflowReserved, model.WorkflowProductionStarted, model.WorkflowAwaitingFinal:
		default:
			// Once funds are held cancellation goes through dispute
			return ErrStepOutOfOrder
		}

		piece, err := s.masterpieceRepo.FindByIDForUpdate(tx, workflow.MasterpieceID)
		if err != nil {
			return err
		}
		piece.Status = model.MasterpieceAvailable
		piece.ReservedByID = nil
		if err := s.masterpieceRepo.UpdateWithTx(tx, piece); err != nil {
			return err
		}

		now := time.Now()
		workflow.Status = model.WorkflowCancelled
		workflow.CancelledAt = &now
		return s.workflowRepo.UpdateWithTx(tx, workflow)
	})
	if err != nil {
		return nil, err
	}

	s.audit(actorID, "workflow_cancelled", "workflow", workflow.ID, "")
	return workflow, nil
}

func (s *workflowService) Get(workflowID uint) (*model.PurchaseWorkflow, error) {
	workflow, err := s.workflowRepo.FindByID(workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}
	return workflow, nil
}

func (s *workflowService) ListByBuyer(buyerID uint) ([]model.PurchaseWorkflow, error) {
	return s.workflowRepo.FindByBuyer(buyerID)
}

func (s *workflowService) List(status string) ([]model.PurchaseWorkflow, error) {
	return s.workflowRepo.List(status)
}

func (s *workflowService) ListPayments(workflowID uint) ([]model.Payment, error) {
	if _, err := s.workflowRepo.FindByID(workflowID); err != nil {
		return nil, ErrWorkflowNotFound
	}
	return s.paymentRepo.FindByWorkflow(workflowID)
}

func (s *workflowService) ListPaymentsByPayer(payerID uint) ([]model.Payment, error) {
	return s.paymentRepo.FindByPayer(payerID)
}

// confirmPayment marks the open payment of the given kind paid.
func (s *workflowService) confirmPayment(tx *gorm.DB, workflowID uint, kind model.PaymentKind, actorID uint) error {
	payments, err := s.paymentRepo.FindByWorkflow(workflowID)
	if err != nil {
		return err
	}

	awaiting := model.AwaitingState(kind)
	for i := range payments {
		p := &payments[i]
		if p.Kind != kind || p.State != awaiting {
			continue
		}
		now := time.Now()
		p.State = model.PaymentPaid
		p.ConfirmedByID = &actorID
		p.ConfirmedAt = &now
		return s.paymentRepo.Update(tx, p)
	}
	return fmt.Errorf("no open %s payment for workflow %d", kind, workflowID)
}

func (s *workflowService) inTransaction(fn func(tx *gorm.DB) error) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during workflow transaction, rolling back", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (s *workflowService) archiveDocument(folder, reference, html string) {
	if s.archiver == nil || html == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.archiver.Archive(ctx, folder, reference, html); err != nil {
			logger.Error("Failed to archive document", err, map[string]interface{}{
				"reference": reference,
			})
		}
	}()
}

func (s *workflowService) audit(actorID uint, action, entity string, entityID uint, detail string) {
	log := &model.AuditLog{
		ActorID:  &actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := s.provenanceRepo.CreateAuditLog(log); err != nil {
		logger.Error("Failed to write audit log", err, map[string]interface{}{
			"action": action,
		})
	}
}
