package service

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/storage"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/docref"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/document"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/minting"
)

func testConfig() *config.Config {
	return &config.Config{
		Atelier: config.AtelierConfig{
			Name:     "Test Atelier",
			Director: "Test Director",
			Address:  "1 Test Street",
			BankIBAN: "DE00 0000 0000 0000 0000 00",
		},
		Escrow: config.EscrowConfig{
			DisputeWindow: 48 * time.Hour,
			SweepSchedule: "0 * * * *",
		},
		Policy: config.PolicyConfig{
			ResalePlatformFeePct: 5,
			ServiceUpliftPct:     50,
			DefaultDepositPct:    10,
		},
	}
}

func setupWorkflowServiceTest(t *testing.T) (WorkflowService, *gorm.DB, *model.User, *model.User, *model.Masterpiece) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	workflowRepo := repository.NewWorkflowRepository(testDB)
	masterpieceRepo := repository.NewMasterpieceRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)
	contractRepo := repository.NewContractRepository(testDB)
	escrowRepo := repository.NewEscrowRepository(testDB)
	certificateRepo := repository.NewCertificateRepository(testDB)
	provenanceRepo := repository.NewProvenanceRepository(testDB)
	fractionalRepo := repository.NewFractionalRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)

	notifications := NewNotificationService(notificationRepo, nil)

	workflowService := NewWorkflowService(
		testDB,
		workflowRepo,
		masterpieceRepo,
		paymentRepo,
		contractRepo,
		escrowRepo,
		certificateRepo,
		provenanceRepo,
		fractionalRepo,
		userRepo,
		notifications,
		docref.NewUUIDGenerator(),
		document.NewHTMLRenderer(),
		minting.NewSimulatedMinter(0),
		storage.NoopArchive{},
		nil,
		testConfig(),
	)

	buyer := &model.User{
		Email:        "collector@example.com",
		PasswordHash: "hash",
		Name:         "Test Collector",
		Role:         model.RoleCollector,
	}
	testDB.Create(buyer)

	admin := &model.User{
		Email:        "staff@example.com",
		PasswordHash: "hash",
		Name:         "Test Staff",
		Role:         model.RoleAdmin,
	}
	testDB.Create(admin)

	piece := &model.Masterpiece{
		Title:        "Aurora Necklace",
		SerialNumber: "AB-2026-001",
		Category:     "necklace",
		Edition:      model.EditionLimited,
		Materials:    pq.StringArray{"platinum", "white gold"},
		Gemstones:    pq.StringArray{"diamond"},
		Price:        100000,
		DepositPct:   20,
		Status:       model.MasterpieceAvailable,
	}
	testDB.Create(piece)

	return workflowService, testDB, buyer, admin, piece
}

// signDeposit records the buyer's signature directly, standing in for
// the contract service.
func signDeposit(t *testing.T, testDB *gorm.DB, contractID uint) {
	t.Helper()
	now := time.Now()
	require.NoError(t, testDB.Model(&model.Contract{}).
		Where("id = ?", contractID).
		Updates(map[string]interface{}{
			"status":         model.ContractSigned,
			"signature_name": "Test Collector",
			"signed_at":      now,
		}).Error)
}

// approvedWorkflow runs request, signature, and approval for a piece.
func approvedWorkflow(t *testing.T, svc WorkflowService, testDB *gorm.DB, pieceID, buyerID uint, buyerRole model.UserRole, adminID uint) *model.PurchaseWorkflow {
	t.Helper()
	contract, err := svc.RequestPurchase(pieceID, buyerID, buyerRole)
	require.NoError(t, err)
	signDeposit(t, testDB, contract.ID)
	wf, err := svc.Approve(pieceID, adminID)
	require.NoError(t, err)
	return wf
}

func advanceAll(t *testing.T, svc WorkflowService, workflowID, adminID uint) *model.PurchaseWorkflow {
	t.Helper()
	steps := []model.WorkflowStep{
		model.StepDepositPaid,
		model.StepProductionFinished,
		model.StepFinalPaymentPaid,
		model.StepDelivered,
		model.StepCompleted,
	}
	var wf *model.PurchaseWorkflow
	var err error
	for _, step := range steps {
		wf, err = svc.AdvanceStep(workflowID, step, adminID)
		require.NoError(t, err, "step %s", step)
	}
	return wf
}

func TestWorkflowService_RequestPurchase_IssuesDepositContract(t *testing.T) {
	svc, testDB, buyer, _, piece := setupWorkflowServiceTest(t)

	contract, err := svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	require.NoError(t, err)

	assert.Equal(t, model.ContractDeposit, contract.Type)
	assert.Equal(t, model.ContractDraft, contract.Status)
	assert.Equal(t, buyer.ID, contract.BuyerID)
	assert.Nil(t, contract.WorkflowID)
	assert.NotEmpty(t, contract.Reference)

	var updated model.Masterpiece
	testDB.First(&updated, piece.ID)
	assert.Equal(t, model.MasterpieceReserved, updated.Status)
	require.NotNil(t, updated.ReservedByID)
	assert.Equal(t, buyer.ID, *updated.ReservedByID)

	// No workflow exists until staff approve
	var count int64
	testDB.Model(&model.PurchaseWorkflow{}).Where("masterpiece_id = ?", piece.ID).Count(&count)
	assert.Zero(t, count)
}

func TestWorkflowService_RequestPurchase_AlreadyRequested(t *testing.T) {
	svc, testDB, buyer, _, piece := setupWorkflowServiceTest(t)

	_, err := svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	require.NoError(t, err)

	// The piece is now held for the first buyer
	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleCollector}
	testDB.Create(other)
	_, err = svc.RequestPurchase(piece.ID, other.ID, other.Role)
	assert.ErrorIs(t, err, ErrMasterpieceNotAvailable)

	// And the same buyer cannot open a second request
	_, err = svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	assert.ErrorIs(t, err, ErrWorkflowExists)
}

func TestWorkflowService_Approve_RequiresSignedContract(t *testing.T) {
	svc, _, buyer, admin, piece := setupWorkflowServiceTest(t)

	_, err := svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	require.NoError(t, err)

	_, err = svc.Approve(piece.ID, admin.ID)
	assert.ErrorIs(t, err, ErrDepositNotSigned)
}

func TestWorkflowService_Approve_WithoutRequest(t *testing.T) {
	svc, _, _, admin, piece := setupWorkflowServiceTest(t)

	_, err := svc.Approve(piece.ID, admin.ID)
	assert.ErrorIs(t, err, ErrPurchaseNotRequested)
}

func TestWorkflowService_Approve_CreatesWorkflow(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	contract, err := svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	require.NoError(t, err)
	signDeposit(t, testDB, contract.ID)

	approved, err := svc.Approve(piece.ID, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, model.WorkflowReserved, approved.Status)
	assert.Equal(t, 100000.0, approved.TotalPrice)
	assert.Equal(t, 20000.0, approved.DepositAmount) // 20% of 100000
	assert.Equal(t, 80000.0, approved.RemainingAmount)
	assert.NotEmpty(t, approved.DepositRef)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, admin.ID, *approved.ApprovedByID)

	// The signed contract is now attached to the workflow
	var signed model.Contract
	require.NoError(t, testDB.First(&signed, contract.ID).Error)
	require.NotNil(t, signed.WorkflowID)
	assert.Equal(t, approved.ID, *signed.WorkflowID)

	var payment model.Payment
	require.NoError(t, testDB.Where("workflow_id = ?", approved.ID).First(&payment).Error)
	assert.Equal(t, model.PaymentAwaitingDeposit, payment.State)
	assert.Equal(t, 20000.0, payment.Amount)
}

func TestWorkflowService_Approve_Twice(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	contract, err := svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	require.NoError(t, err)
	signDeposit(t, testDB, contract.ID)

	_, err = svc.Approve(piece.ID, admin.ID)
	require.NoError(t, err)

	_, err = svc.Approve(piece.ID, admin.ID)
	assert.ErrorIs(t, err, ErrWorkflowExists)
}

func TestWorkflowService_Approve_DepositFromCurrentValuation(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	contract, err := svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	require.NoError(t, err)
	signDeposit(t, testDB, contract.ID)

	// The piece is revalued while the request awaits review
	require.NoError(t, testDB.Model(&model.Masterpiece{}).
		Where("id = ?", piece.ID).
		Update("price", 150000.0).Error)

	approved, err := svc.Approve(piece.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 150000.0, approved.TotalPrice)
	assert.Equal(t, 30000.0, approved.DepositAmount) // 20% of the new valuation
	assert.Equal(t, 120000.0, approved.RemainingAmount)
}

func TestWorkflowService_Approve_DefaultDepositPct(t *testing.T) {
	svc, testDB, buyer, admin, _ := setupWorkflowServiceTest(t)

	piece := &model.Masterpiece{
		Title:        "Plain Band",
		SerialNumber: "AB-2026-002",
		Price:        50000,
		Status:       model.MasterpieceAvailable,
	}
	testDB.Create(piece)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)
	assert.Equal(t, 5000.0, wf.DepositAmount) // platform default 10%
	assert.Equal(t, 45000.0, wf.RemainingAmount)
}

func TestWorkflowService_Reject_LeavesNoWorkflow(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	contract, err := svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	require.NoError(t, err)

	rejected, err := svc.Reject(piece.ID, admin.ID, "provenance check failed")
	require.NoError(t, err)
	assert.Equal(t, contract.ID, rejected.ID)
	assert.Equal(t, model.ContractVoid, rejected.Status)

	// The piece returns to the catalog and no workflow row was ever
	// created
	var updated model.Masterpiece
	testDB.First(&updated, piece.ID)
	assert.Equal(t, model.MasterpieceAvailable, updated.Status)
	assert.Nil(t, updated.ReservedByID)

	var count int64
	testDB.Model(&model.PurchaseWorkflow{}).Where("masterpiece_id = ?", piece.ID).Count(&count)
	assert.Zero(t, count)

	// A fresh request is possible afterwards
	_, err = svc.RequestPurchase(piece.ID, buyer.ID, buyer.Role)
	assert.NoError(t, err)
}

func TestWorkflowService_InvoiceUsesCurrentValuation(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)
	assert.Equal(t, 20000.0, wf.DepositAmount)

	_, err := svc.AdvanceStep(wf.ID, model.StepDepositPaid, admin.ID)
	require.NoError(t, err)

	// Revaluation during production reprices the final invoice
	require.NoError(t, testDB.Model(&model.Masterpiece{}).
		Where("id = ?", piece.ID).
		Update("price", 150000.0).Error)

	invoiced, err := svc.AdvanceStep(wf.ID, model.StepProductionFinished, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 150000.0, invoiced.TotalPrice)
	assert.Equal(t, 30000.0, invoiced.DepositAmount)
	assert.Equal(t, 120000.0, invoiced.RemainingAmount)

	var payment model.Payment
	require.NoError(t, testDB.Where("workflow_id = ? AND kind = ?", wf.ID, model.PaymentFinal).
		First(&payment).Error)
	assert.Equal(t, 120000.0, payment.Amount)
	assert.Equal(t, model.PaymentAwaitingPayment, payment.State)
}

func TestWorkflowService_AdvanceStep_HappyPath(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)

	final := advanceAll(t, svc, wf.ID, admin.ID)
	assert.Equal(t, model.WorkflowCompleted, final.Status)
	assert.NotNil(t, final.CompletedAt)
	assert.NotEmpty(t, final.InvoiceRef)

	// Ownership transferred
	var updated model.Masterpiece
	testDB.First(&updated, piece.ID)
	assert.Equal(t, model.MasterpieceSold, updated.Status)
	require.NotNil(t, updated.CurrentOwnerID)
	assert.Equal(t, buyer.ID, *updated.CurrentOwnerID)

	// Escrow released
	var escrow model.EscrowTransaction
	require.NoError(t, testDB.Where("workflow_id = ?", wf.ID).First(&escrow).Error)
	assert.Equal(t, model.EscrowReleased, escrow.Status)
	assert.Equal(t, final.RemainingAmount, escrow.Amount)

	// Certificate issued
	var cert model.Certificate
	require.NoError(t, testDB.Where("masterpiece_id = ?", piece.ID).First(&cert).Error)
	assert.Equal(t, buyer.ID, cert.OwnerID)
	assert.NotEmpty(t, cert.Number)
	assert.NotEmpty(t, cert.VerificationToken)

	// Sale revenue recorded
	var revenue model.RevenueEntry
	require.NoError(t, testDB.Where("source = ?", model.RevenueSale).First(&revenue).Error)
	assert.Equal(t, final.TotalPrice, revenue.Amount)

	// Ownership history entry
	var record model.OwnershipRecord
	require.NoError(t, testDB.Where("masterpiece_id = ?", piece.ID).First(&record).Error)
	assert.Equal(t, "purchase", record.AcquiredVia)
}

func TestWorkflowService_ContractLineage(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)
	advanceAll(t, svc, wf.ID, admin.ID)

	var contracts []model.Contract
	require.NoError(t, testDB.Where("workflow_id = ?", wf.ID).
		Order("created_at ASC").Find(&contracts).Error)
	require.Len(t, contracts, 3)

	deposit := contracts[0]
	invoice := contracts[1]
	certificate := contracts[2]

	assert.Equal(t, model.ContractDeposit, deposit.Type)
	assert.Equal(t, model.ContractSigned, deposit.Status)

	assert.Equal(t, model.ContractInvoice, invoice.Type)
	require.NotNil(t, invoice.ParentID)
	assert.Equal(t, deposit.ID, *invoice.ParentID)

	assert.Equal(t, model.ContractCertificate, certificate.Type)
	assert.Equal(t, model.ContractSigned, certificate.Status)
	assert.Equal(t, "Test Director", certificate.SignatureName)
	require.NotNil(t, certificate.ParentID)
	assert.Equal(t, invoice.ID, *certificate.ParentID)
}

func TestWorkflowService_AdvanceStep_OutOfOrder(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)

	// Cannot confirm the final payment before the deposit
	_, err := svc.AdvanceStep(wf.ID, model.StepFinalPaymentPaid, admin.ID)
	assert.ErrorIs(t, err, ErrStepOutOfOrder)

	// Cannot complete straight from the reserved state either
	_, err = svc.AdvanceStep(wf.ID, model.StepCompleted, admin.ID)
	assert.ErrorIs(t, err, ErrStepOutOfOrder)
}

func TestWorkflowService_AdvanceStep_UnknownStep(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)

	_, err := svc.AdvanceStep(wf.ID, model.WorkflowStep("teleported"), admin.ID)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestWorkflowService_AdvanceStep_DisputedEscrowBlocksCompletion(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)

	for _, step := range []model.WorkflowStep{
		model.StepDepositPaid,
		model.StepProductionFinished,
		model.StepFinalPaymentPaid,
		model.StepDelivered,
	} {
		_, err := svc.AdvanceStep(wf.ID, step, admin.ID)
		require.NoError(t, err)
	}

	// Buyer disputes during the window
	require.NoError(t, testDB.Model(&model.EscrowTransaction{}).
		Where("workflow_id = ?", wf.ID).
		Update("status", model.EscrowDisputed).Error)

	_, err := svc.AdvanceStep(wf.ID, model.StepCompleted, admin.ID)
	assert.ErrorIs(t, err, ErrEscrowUnderDispute)
}

func TestWorkflowService_Cancel_ByBuyer(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)

	cancelled, err := svc.Cancel(wf.ID, buyer.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.WorkflowCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	var updated model.Masterpiece
	testDB.First(&updated, piece.ID)
	assert.Equal(t, model.MasterpieceAvailable, updated.Status)
}

func TestWorkflowService_Cancel_NotBuyer(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger", Role: model.RoleCollector}
	testDB.Create(stranger)

	_, err := svc.Cancel(wf.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrNotWorkflowBuyer)
}

func TestWorkflowService_Cancel_ClosedWorkflow(t *testing.T) {
	svc, testDB, buyer, admin, piece := setupWorkflowServiceTest(t)

	wf := approvedWorkflow(t, svc, testDB, piece.ID, buyer.ID, buyer.Role, admin.ID)
	advanceAll(t, svc, wf.ID, admin.ID)

	_, err := svc.Cancel(wf.ID, buyer.ID, true)
	assert.ErrorIs(t, err, ErrWorkflowClosed)
}
