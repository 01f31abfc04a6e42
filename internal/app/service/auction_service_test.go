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

func setupAuctionServiceTest(t *testing.T) (AuctionService, *gorm.DB, *model.User, *model.Masterpiece) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	auctionRepo := repository.NewAuctionRepository(testDB)
	masterpieceRepo := repository.NewMasterpieceRepository(testDB)
	provenanceRepo := repository.NewProvenanceRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)

	rarity := NewRarityService(masterpieceRepo, provenanceRepo, auctionRepo)
	notifications := NewNotificationService(notificationRepo, nil)
	auctionService := NewAuctionService(testDB, auctionRepo, masterpieceRepo, rarity, notifications, nil)

	admin := &model.User{
		Email:        "staff@example.com",
		PasswordHash: "hash",
		Name:         "Test Staff",
		Role:         model.RoleAdmin,
	}
	testDB.Create(admin)

	piece := &model.Masterpiece{
		Title:        "Midnight Brooch",
		SerialNumber: "AB-2026-010",
		Price:        40000,
		Status:       model.MasterpieceAvailable,
	}
	testDB.Create(piece)

	return auctionService, testDB, admin, piece
}

func createBidder(t *testing.T, testDB *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Bidder " + email,
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func activeAuction(t *testing.T, svc AuctionService, pieceID, adminID uint, reserve float64) *model.Auction {
	t.Helper()
	auction, err := svc.Create(CreateAuctionInput{
		MasterpieceID: pieceID,
		StartingBid:   10000,
		ReservePrice:  reserve,
		StartsAt:      time.Now().Add(-time.Hour),
		EndsAt:        time.Now().Add(time.Hour),
	}, adminID)
	require.NoError(t, err)
	return auction
}

func TestAuctionService_Create(t *testing.T) {
	svc, testDB, admin, piece := setupAuctionServiceTest(t)

	auction := activeAuction(t, svc, piece.ID, admin.ID, 0)
	assert.Equal(t, model.AuctionActive, auction.Status)
	assert.Equal(t, 10000.0, auction.StartingBid)
	assert.Equal(t, 10000.0, auction.CurrentBid)

	// The piece is off the market while the auction runs
	var updated model.Masterpiece
	testDB.First(&updated, piece.ID)
	assert.Equal(t, model.MasterpieceAuction, updated.Status)
}

func TestAuctionService_Create_PieceUnderAuctionIsUnavailable(t *testing.T) {
	svc, _, admin, piece := setupAuctionServiceTest(t)

	activeAuction(t, svc, piece.ID, admin.ID, 0)

	_, err := svc.Create(CreateAuctionInput{
		MasterpieceID: piece.ID,
		StartingBid:   10000,
		StartsAt:      time.Now().Add(-time.Hour),
		EndsAt:        time.Now().Add(time.Hour),
	}, admin.ID)
	assert.ErrorIs(t, err, ErrMasterpieceNotAvailable)
}

func TestAuctionService_Create_FutureStartIsScheduled(t *testing.T) {
	svc, _, admin, piece := setupAuctionServiceTest(t)

	auction, err := svc.Create(CreateAuctionInput{
		MasterpieceID: piece.ID,
		StartingBid:   10000,
		StartsAt:      time.Now().Add(time.Hour),
		EndsAt:        time.Now().Add(2 * time.Hour),
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AuctionScheduled, auction.Status)
}

func TestAuctionService_PlaceBid_Ordering(t *testing.T) {
	svc, testDB, admin, piece := setupAuctionServiceTest(t)
	auction := activeAuction(t, svc, piece.ID, admin.ID, 0)

	alice := createBidder(t, testDB, "alice@example.com", model.RoleCollector)
	bob := createBidder(t, testDB, "bob@example.com", model.RoleCollector)

	// Every bid must strictly exceed the current one, the opening bid
	// included, because the current bid starts at the starting bid
	_, err := svc.PlaceBid(auction.ID, alice.ID, alice.Role, 10000)
	assert.ErrorIs(t, err, ErrBidTooLow)

	bid, err := svc.PlaceBid(auction.ID, alice.ID, alice.Role, 10500)
	require.NoError(t, err)
	assert.Equal(t, 10500.0, bid.Amount)

	_, err = svc.PlaceBid(auction.ID, bob.ID, bob.Role, 10500)
	assert.ErrorIs(t, err, ErrBidTooLow)

	_, err = svc.PlaceBid(auction.ID, bob.ID, bob.Role, 12000)
	require.NoError(t, err)

	updated, err := svc.Get(auction.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, updated.CurrentBid)
	require.NotNil(t, updated.CurrentBidderID)
	assert.Equal(t, bob.ID, *updated.CurrentBidderID)
}

func TestAuctionService_PlaceBid_BelowStarting(t *testing.T) {
	svc, testDB, admin, piece := setupAuctionServiceTest(t)
	auction := activeAuction(t, svc, piece.ID, admin.ID, 0)

	alice := createBidder(t, testDB, "alice@example.com", model.RoleCollector)

	_, err := svc.PlaceBid(auction.ID, alice.ID, alice.Role, 9999)
	assert.ErrorIs(t, err, ErrBidTooLow)
}

func TestAuctionService_PlaceBid_SelfOutbid(t *testing.T) {
	svc, testDB, admin, piece := setupAuctionServiceTest(t)
	auction := activeAuction(t, svc, piece.ID, admin.ID, 0)

	alice := createBidder(t, testDB, "alice@example.com", model.RoleCollector)

	_, err := svc.PlaceBid(auction.ID, alice.ID, alice.Role, 10500)
	require.NoError(t, err)

	_, err = svc.PlaceBid(auction.ID, alice.ID, alice.Role, 11000)
	assert.ErrorIs(t, err, ErrAlreadyHighBidder)
}

func TestAuctionService_PlaceBid_NotActive(t *testing.T) {
	svc, testDB, admin, piece := setupAuctionServiceTest(t)

	auction, err := svc.Create(CreateAuctionInput{
		MasterpieceID: piece.ID,
		StartingBid:   10000,
		StartsAt:      time.Now().Add(time.Hour),
		EndsAt:        time.Now().Add(2 * time.Hour),
	}, admin.ID)
	require.NoError(t, err)

	alice := createBidder(t, testDB, "alice@example.com", model.RoleCollector)

	_, err = svc.PlaceBid(auction.ID, alice.ID, alice.Role, 10000)
	assert.ErrorIs(t, err, ErrAuctionNotActive)
}

func TestAuctionService_VIPOnlyHiddenFromCollectors(t *testing.T) {
	svc, testDB, admin, _ := setupAuctionServiceTest(t)

	vipPiece := &model.Masterpiece{
		Title:        "Private Tiara",
		SerialNumber: "AB-2026-011",
		Price:        90000,
		Status:       model.MasterpieceAvailable,
		VIPOnly:      true,
	}
	testDB.Create(vipPiece)

	auction := activeAuction(t, svc, vipPiece.ID, admin.ID, 0)
	assert.True(t, auction.VIPOnly) // inherited from the piece

	// Invisible to collectors, indistinguishable from a missing auction
	_, err := svc.Get(auction.ID, model.RoleCollector)
	assert.ErrorIs(t, err, ErrAuctionNotFound)

	// Visible to vip clientele
	got, err := svc.Get(auction.ID, model.RoleVIP)
	require.NoError(t, err)
	assert.Equal(t, auction.ID, got.ID)
}

func TestAuctionService_ReservePriceHiddenFromBidders(t *testing.T) {
	svc, _, admin, piece := setupAuctionServiceTest(t)
	auction := activeAuction(t, svc, piece.ID, admin.ID, 30000)

	got, err := svc.Get(auction.ID, model.RoleCollector)
	require.NoError(t, err)
	assert.Zero(t, got.ReservePrice)

	asAdmin, err := svc.Get(auction.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, asAdmin.ReservePrice)
}

func TestAuctionService_Settle_BeforeEnd(t *testing.T) {
	svc, _, admin, piece := setupAuctionServiceTest(t)
	auction := activeAuction(t, svc, piece.ID, admin.ID, 0)

	_, err := svc.Settle(auction.ID, admin.ID)
	assert.ErrorIs(t, err, ErrAuctionNotEnded)
}

func TestAuctionService_Settle_WinnerConfirmed(t *testing.T) {
	svc, testDB, admin, piece := setupAuctionServiceTest(t)
	auction := activeAuction(t, svc, piece.ID, admin.ID, 0)

	alice := createBidder(t, testDB, "alice@example.com", model.RoleCollector)
	_, err := svc.PlaceBid(auction.ID, alice.ID, alice.Role, 15000)
	require.NoError(t, err)

	// Push the auction past its end time
	require.NoError(t, testDB.Model(&model.Auction{}).
		Where("id = ?", auction.ID).
		Update("ends_at", time.Now().Add(-time.Minute)).Error)

	settled, err := svc.Settle(auction.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AuctionSettled, settled.Status)
	require.NotNil(t, settled.WinnerID)
	assert.Equal(t, alice.ID, *settled.WinnerID)

	// The winner buys through the normal purchase flow, so the piece
	// returns to the catalog once the hammer falls.
	var after model.Masterpiece
	require.NoError(t, testDB.First(&after, piece.ID).Error)
	assert.Equal(t, model.MasterpieceAvailable, after.Status)
}

func TestAuctionService_Settle_ReserveNotMet(t *testing.T) {
	svc, testDB, admin, piece := setupAuctionServiceTest(t)
	auction := activeAuction(t, svc, piece.ID, admin.ID, 50000)

	alice := createBidder(t, testDB, "alice@example.com", model.RoleCollector)
	_, err := svc.PlaceBid(auction.ID, alice.ID, alice.Role, 15000)
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.Auction{}).
		Where("id = ?", auction.ID).
		Update("ends_at", time.Now().Add(-time.Minute)).Error)

	ended, err := svc.Settle(auction.ID, admin.ID)
	assert.ErrorIs(t, err, ErrReserveNotMet)
	require.NotNil(t, ended)
	assert.Equal(t, model.AuctionEnded, ended.Status)
	assert.Nil(t, ended.WinnerID)

	var after model.Masterpiece
	require.NoError(t, testDB.First(&after, piece.ID).Error)
	assert.Equal(t, model.MasterpieceAvailable, after.Status)
}
