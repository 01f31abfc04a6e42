package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
)

func setupAnalyticsServiceTest(t *testing.T) (AnalyticsService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := NewAnalyticsService(testDB,
		repository.NewFractionalRepository(testDB),
		repository.NewProvenanceRepository(testDB))
	return svc, testDB
}

func TestAnalyticsService_GetDashboard(t *testing.T) {
	svc, testDB := setupAnalyticsServiceTest(t)

	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleVIP}
	testDB.Create(buyer)

	available := &model.Masterpiece{Title: "Open Piece", SerialNumber: "AB-2026-080", Price: 20000, Status: model.MasterpieceAvailable}
	testDB.Create(available)
	sold := &model.Masterpiece{Title: "Closed Piece", SerialNumber: "AB-2026-081", Price: 50000, Status: model.MasterpieceSold}
	testDB.Create(sold)

	testDB.Create(&model.PurchaseWorkflow{MasterpieceID: sold.ID, BuyerID: buyer.ID, Status: model.WorkflowCompleted, TotalPrice: 50000})
	testDB.Create(&model.PurchaseWorkflow{MasterpieceID: available.ID, BuyerID: buyer.ID, Status: model.WorkflowProductionStarted, TotalPrice: 20000})

	testDB.Create(&model.EscrowTransaction{BuyerID: buyer.ID, Amount: 16000, Status: model.EscrowHeld, Source: model.EscrowFromPurchase})
	testDB.Create(&model.RevenueEntry{Source: model.RevenueSale, Amount: 50000, MasterpieceID: &sold.ID})

	dashboard, err := svc.GetDashboard()
	require.NoError(t, err)
	assert.EqualValues(t, 2, dashboard.TotalMasterpieces)
	assert.EqualValues(t, 1, dashboard.AvailablePieces)
	assert.EqualValues(t, 1, dashboard.ActiveWorkflows)
	assert.EqualValues(t, 1, dashboard.CompletedSales)
	assert.Equal(t, 16000.0, dashboard.HeldEscrowAmount)
	assert.Equal(t, 50000.0, dashboard.TotalRevenue)
	assert.EqualValues(t, 1, dashboard.VIPClients)
}

func TestAnalyticsService_GetRevenueBreakdown(t *testing.T) {
	svc, testDB := setupAnalyticsServiceTest(t)

	testDB.Create(&model.RevenueEntry{Source: model.RevenueSale, Amount: 50000})
	testDB.Create(&model.RevenueEntry{Source: model.RevenueSale, Amount: 30000})
	testDB.Create(&model.RevenueEntry{Source: model.RevenueResaleFee, Amount: 2500})

	rows, err := svc.GetRevenueBreakdown(time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	bySource := make(map[string]RevenueBreakdown, len(rows))
	for _, row := range rows {
		bySource[row.Source] = row
	}
	assert.Equal(t, 80000.0, bySource[string(model.RevenueSale)].Total)
	assert.EqualValues(t, 2, bySource[string(model.RevenueSale)].Count)
	assert.Equal(t, 2500.0, bySource[string(model.RevenueResaleFee)].Total)

	// A cutoff in the future filters everything out.
	rows, err = svc.GetRevenueBreakdown(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAnalyticsService_GetInvestorSummary(t *testing.T) {
	svc, testDB := setupAnalyticsServiceTest(t)

	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleCollector}
	testDB.Create(buyer)
	piece := &model.Masterpiece{Title: "Sold Piece", SerialNumber: "AB-2026-082", Price: 60000, Status: model.MasterpieceSold}
	testDB.Create(piece)

	testDB.Create(&model.PurchaseWorkflow{MasterpieceID: piece.ID, BuyerID: buyer.ID, Status: model.WorkflowCompleted, TotalPrice: 60000})
	testDB.Create(&model.PurchaseWorkflow{MasterpieceID: piece.ID, BuyerID: buyer.ID, Status: model.WorkflowCompleted, TotalPrice: 40000})
	testDB.Create(&model.RevenueEntry{Source: model.RevenueSale, Amount: 100000})

	summary, err := svc.GetInvestorSummary()
	require.NoError(t, err)
	assert.Equal(t, 100000.0, summary["total_revenue"])
	assert.EqualValues(t, 2, summary["completed_sales"])
	assert.Equal(t, 50000.0, summary["average_sale_price"])
}
