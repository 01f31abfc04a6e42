package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
)

func setupLogisticsServiceTest(t *testing.T) (LogisticsService, *gorm.DB, *model.PurchaseWorkflow, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	logisticsRepo := repository.NewLogisticsRepository(testDB)
	workflowRepo := repository.NewWorkflowRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)
	notifications := NewNotificationService(notificationRepo, nil)
	svc := NewLogisticsService(logisticsRepo, workflowRepo, notifications, nil)

	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleCollector}
	testDB.Create(buyer)

	piece := &model.Masterpiece{
		Title:        "Shipped Piece",
		SerialNumber: "AB-2026-060",
		Price:        40000,
		Status:       model.MasterpieceReserved,
	}
	testDB.Create(piece)

	workflow := &model.PurchaseWorkflow{
		MasterpieceID: piece.ID,
		BuyerID:       buyer.ID,
		Status:        model.WorkflowFundsHeld,
		TotalPrice:    40000,
	}
	testDB.Create(workflow)

	return svc, testDB, workflow, buyer
}

func TestLogisticsService_ProductionUpdates(t *testing.T) {
	svc, _, workflow, _ := setupLogisticsServiceTest(t)

	update, err := svc.PostProductionUpdate(workflow.ID, ProductionUpdateInput{
		Stage:           "stone setting",
		Note:            "Center stone set",
		PercentComplete: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "stone setting", update.Stage)

	updates, err := svc.GetProductionUpdates(workflow.ID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, 60, updates[0].PercentComplete)
}

func TestLogisticsService_DeliveryDetail_OnlyBuyer(t *testing.T) {
	svc, testDB, workflow, buyer := setupLogisticsServiceTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleCollector}
	testDB.Create(other)

	input := DeliveryDetailInput{
		Method:        model.DeliveryCourier,
		Address:       "12 Quai des Bergues, Geneva",
		RecipientName: "Buyer",
	}

	_, err := svc.SetDeliveryDetail(workflow.ID, other.ID, input)
	assert.ErrorIs(t, err, ErrNotWorkflowBuyer)

	detail, err := svc.SetDeliveryDetail(workflow.ID, buyer.ID, input)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryCourier, detail.Method)

	fetched, err := svc.GetDeliveryDetail(workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Quai des Bergues, Geneva", fetched.Address)
}

func TestLogisticsService_ShippingLifecycle(t *testing.T) {
	svc, _, workflow, _ := setupLogisticsServiceTest(t)

	order, err := svc.CreateShippingOrder(workflow.ID, "Ferrari Group", "FG-44821")
	require.NoError(t, err)
	assert.Equal(t, model.ShippingPreparing, order.Status)
	require.Len(t, order.CustodyLog, 1)
	assert.True(t, strings.HasSuffix(order.CustodyLog[0], "atelier vault"))

	order, err = svc.AppendCustody(workflow.ID, "sealed for transport")
	require.NoError(t, err)
	require.Len(t, order.CustodyLog, 2)

	order, err = svc.MarkShipped(workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ShippingInTransit, order.Status)
	require.NotNil(t, order.ShippedAt)
	assert.True(t, strings.HasSuffix(order.CustodyLog[2], "handed to Ferrari Group"))

	order, err = svc.MarkDelivered(workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ShippingDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
	require.Len(t, order.CustodyLog, 4)
}

func TestLogisticsService_GetShippingOrder_NotFound(t *testing.T) {
	svc, _, workflow, _ := setupLogisticsServiceTest(t)

	_, err := svc.GetShippingOrder(workflow.ID)
	assert.ErrorIs(t, err, ErrShippingNotFound)
}

func TestLogisticsService_InsurancePolicies(t *testing.T) {
	svc, testDB, workflow, _ := setupLogisticsServiceTest(t)

	policy := &model.InsurancePolicy{
		MasterpieceID:  workflow.MasterpieceID,
		Provider:       "Helvetia Fine Art",
		PolicyNumber:   "HF-2026-118",
		CoverageAmount: 45000,
		ValidFrom:      time.Now(),
		ValidUntil:     time.Now().AddDate(1, 0, 0),
	}
	require.NoError(t, svc.CreateInsurancePolicy(policy))

	policies, err := svc.GetInsurancePolicies(workflow.MasterpieceID)
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, "HF-2026-118", policies[0].PolicyNumber)

	var count int64
	testDB.Model(&model.InsurancePolicy{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
