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

func setupFractionalServiceTest(t *testing.T) (FractionalService, *gorm.DB, *model.Masterpiece, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	fractionalRepo := repository.NewFractionalRepository(testDB)
	masterpieceRepo := repository.NewMasterpieceRepository(testDB)
	provenanceRepo := repository.NewProvenanceRepository(testDB)

	fractionalService := NewFractionalService(testDB, fractionalRepo, masterpieceRepo, provenanceRepo)

	piece := &model.Masterpiece{
		Title:        "Crown Jewel",
		SerialNumber: "AB-2026-030",
		Price:        500000,
		Status:       model.MasterpieceAvailable,
	}
	testDB.Create(piece)

	holderA := &model.User{Email: "holder-a@example.com", PasswordHash: "hash", Name: "Holder A", Role: model.RoleInvestor}
	testDB.Create(holderA)
	holderB := &model.User{Email: "holder-b@example.com", PasswordHash: "hash", Name: "Holder B", Role: model.RoleInvestor}
	testDB.Create(holderB)

	return fractionalService, testDB, piece, holderA, holderB
}

func TestFractionalService_IssueShares(t *testing.T) {
	svc, _, piece, holderA, _ := setupFractionalServiceTest(t)

	share, err := svc.IssueShares(piece.ID, holderA.ID, 40, 1)
	require.NoError(t, err)
	assert.Equal(t, 40.0, share.Percentage)
}

func TestFractionalService_IssueShares_MergesExisting(t *testing.T) {
	svc, _, piece, holderA, _ := setupFractionalServiceTest(t)

	_, err := svc.IssueShares(piece.ID, holderA.ID, 40, 1)
	require.NoError(t, err)

	share, err := svc.IssueShares(piece.ID, holderA.ID, 20, 1)
	require.NoError(t, err)
	assert.Equal(t, 60.0, share.Percentage)

	holdings, err := svc.GetHoldings(piece.ID)
	require.NoError(t, err)
	assert.Len(t, holdings, 1)
}

func TestFractionalService_IssueShares_CapAt100(t *testing.T) {
	svc, _, piece, holderA, holderB := setupFractionalServiceTest(t)

	_, err := svc.IssueShares(piece.ID, holderA.ID, 70, 1)
	require.NoError(t, err)

	_, err = svc.IssueShares(piece.ID, holderB.ID, 31, 1)
	assert.ErrorIs(t, err, ErrSharesOversubscribed)

	// Exactly filling the remainder is fine
	_, err = svc.IssueShares(piece.ID, holderB.ID, 30, 1)
	require.NoError(t, err)
}

func TestFractionalService_IssueShares_InvalidAmount(t *testing.T) {
	svc, _, piece, holderA, _ := setupFractionalServiceTest(t)

	_, err := svc.IssueShares(piece.ID, holderA.ID, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidShareAmount)

	_, err = svc.IssueShares(piece.ID, holderA.ID, 101, 1)
	assert.ErrorIs(t, err, ErrInvalidShareAmount)
}

func TestFractionalService_Transfer(t *testing.T) {
	svc, testDB, piece, holderA, holderB := setupFractionalServiceTest(t)

	_, err := svc.IssueShares(piece.ID, holderA.ID, 50, 1)
	require.NoError(t, err)

	transfer, err := svc.Transfer(piece.ID, holderA.ID, holderB.ID, 20, 100000)
	require.NoError(t, err)
	assert.Equal(t, 20.0, transfer.Percentage)

	holdings, err := svc.GetHoldings(piece.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	byHolder := map[uint]float64{}
	for _, h := range holdings {
		byHolder[h.HolderID] = h.Percentage
	}
	assert.Equal(t, 30.0, byHolder[holderA.ID])
	assert.Equal(t, 20.0, byHolder[holderB.ID])

	var count int64
	testDB.Model(&model.FractionalTransfer{}).Where("masterpiece_id = ?", piece.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFractionalService_Transfer_WholeStakeRemovesSender(t *testing.T) {
	svc, _, piece, holderA, holderB := setupFractionalServiceTest(t)

	_, err := svc.IssueShares(piece.ID, holderA.ID, 25, 1)
	require.NoError(t, err)

	_, err = svc.Transfer(piece.ID, holderA.ID, holderB.ID, 25, 50000)
	require.NoError(t, err)

	holdings, err := svc.GetHoldings(piece.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, holderB.ID, holdings[0].HolderID)
}

func TestFractionalService_Transfer_Insufficient(t *testing.T) {
	svc, _, piece, holderA, holderB := setupFractionalServiceTest(t)

	_, err := svc.IssueShares(piece.ID, holderA.ID, 10, 1)
	require.NoError(t, err)

	_, err = svc.Transfer(piece.ID, holderA.ID, holderB.ID, 15, 10000)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestFractionalService_Transfer_NoHolding(t *testing.T) {
	svc, _, piece, holderA, holderB := setupFractionalServiceTest(t)

	_, err := svc.Transfer(piece.ID, holderB.ID, holderA.ID, 5, 1000)
	assert.ErrorIs(t, err, ErrShareNotFound)
}
