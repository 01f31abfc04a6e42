package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
)

func setupContractServiceTest(t *testing.T) (ContractService, *gorm.DB, *model.User, *model.Contract) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	contractRepo := repository.NewContractRepository(testDB)
	provenanceRepo := repository.NewProvenanceRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)

	notifications := NewNotificationService(notificationRepo, nil)
	auth := NewAuthService(userRepo, &testConfig().JWT, false)
	contractService := NewContractService(contractRepo, provenanceRepo, auth, notifications, nil)

	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleCollector}
	testDB.Create(buyer)

	piece := &model.Masterpiece{Title: "Contracted", SerialNumber: "AB-CTR", Price: 10000, Status: model.MasterpieceReserved}
	testDB.Create(piece)

	contract := &model.Contract{
		MasterpieceID: piece.ID,
		BuyerID:       buyer.ID,
		Type:          model.ContractDeposit,
		Reference:     "CTR-TEST-0001",
		Status:        model.ContractDraft,
	}
	testDB.Create(contract)

	return contractService, testDB, buyer, contract
}

func TestContractService_Sign(t *testing.T) {
	svc, testDB, buyer, contract := setupContractServiceTest(t)

	signed, err := svc.Sign(contract.ID, buyer.ID, "  Buyer Name  ")
	require.NoError(t, err)
	assert.Equal(t, model.ContractSigned, signed.Status)
	assert.Equal(t, "Buyer Name", signed.SignatureName)
	assert.NotNil(t, signed.SignedAt)

	// A deposit contract does not touch the buyer's role
	var unchanged model.User
	testDB.First(&unchanged, buyer.ID)
	assert.Equal(t, model.RoleCollector, unchanged.Role)

	var audit model.AuditLog
	require.NoError(t, testDB.Where("action = ?", "contract_signed").First(&audit).Error)
	assert.Equal(t, contract.ID, audit.EntityID)
}

func TestContractService_Sign_VIPAgreementPromotes(t *testing.T) {
	svc, testDB, buyer, _ := setupContractServiceTest(t)

	vipContract := &model.Contract{
		BuyerID:   buyer.ID,
		Type:      model.ContractVIP,
		Reference: "CTR-TEST-VIP1",
		Status:    model.ContractDraft,
	}
	testDB.Create(vipContract)

	signed, err := svc.Sign(vipContract.ID, buyer.ID, "Buyer Name")
	require.NoError(t, err)
	assert.Equal(t, model.ContractSigned, signed.Status)

	var promoted model.User
	testDB.First(&promoted, buyer.ID)
	assert.Equal(t, model.RoleVIP, promoted.Role)
	assert.NotNil(t, promoted.VIPSince)
}

func TestContractService_Sign_OnlyBuyer(t *testing.T) {
	svc, testDB, _, contract := setupContractServiceTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleCollector}
	testDB.Create(other)

	_, err := svc.Sign(contract.ID, other.ID, "Other Name")
	assert.ErrorIs(t, err, ErrNotContractBuyer)
}

func TestContractService_Sign_Twice(t *testing.T) {
	svc, _, buyer, contract := setupContractServiceTest(t)

	_, err := svc.Sign(contract.ID, buyer.ID, "Buyer Name")
	require.NoError(t, err)

	_, err = svc.Sign(contract.ID, buyer.ID, "Buyer Name")
	assert.ErrorIs(t, err, ErrContractAlreadySigned)
}

func TestContractService_Sign_EmptySignature(t *testing.T) {
	svc, _, buyer, contract := setupContractServiceTest(t)

	_, err := svc.Sign(contract.ID, buyer.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptySignature)
}

func TestContractService_ListByWorkflow(t *testing.T) {
	svc, testDB, buyer, contract := setupContractServiceTest(t)

	wf := &model.PurchaseWorkflow{
		MasterpieceID: contract.MasterpieceID,
		BuyerID:       buyer.ID,
		Status:        model.WorkflowProductionStarted,
		TotalPrice:    10000,
	}
	require.NoError(t, testDB.Create(wf).Error)

	require.NoError(t, testDB.Model(contract).Update("workflow_id", wf.ID).Error)

	invoice := &model.Contract{
		MasterpieceID: contract.MasterpieceID,
		WorkflowID:    &wf.ID,
		BuyerID:       buyer.ID,
		Type:          model.ContractInvoice,
		ParentID:      &contract.ID,
		Reference:     "CTR-TEST-0002",
		Status:        model.ContractDraft,
	}
	require.NoError(t, testDB.Create(invoice).Error)

	contracts, err := svc.ListByWorkflow(wf.ID)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, model.ContractDeposit, contracts[0].Type)
	assert.Equal(t, model.ContractInvoice, contracts[1].Type)
	require.NotNil(t, contracts[1].ParentID)
	assert.Equal(t, contract.ID, *contracts[1].ParentID)
}
