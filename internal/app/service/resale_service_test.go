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
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/docref"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/document"
)

func setupResaleServiceTest(t *testing.T) (ResaleService, *gorm.DB, *model.User, *model.User, *model.User, *model.Masterpiece) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	resaleRepo := repository.NewResaleRepository(testDB)
	masterpieceRepo := repository.NewMasterpieceRepository(testDB)
	escrowRepo := repository.NewEscrowRepository(testDB)
	certificateRepo := repository.NewCertificateRepository(testDB)
	fractionalRepo := repository.NewFractionalRepository(testDB)
	provenanceRepo := repository.NewProvenanceRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)

	notifications := NewNotificationService(notificationRepo, nil)

	resaleService := NewResaleService(
		testDB,
		resaleRepo,
		masterpieceRepo,
		escrowRepo,
		certificateRepo,
		fractionalRepo,
		provenanceRepo,
		userRepo,
		notifications,
		docref.NewUUIDGenerator(),
		document.NewHTMLRenderer(),
		nil,
		testConfig(),
	)

	seller := &model.User{Email: "seller@example.com", PasswordHash: "hash", Name: "Seller", Role: model.RoleCollector}
	testDB.Create(seller)
	buyer := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleCollector}
	testDB.Create(buyer)
	admin := &model.User{Email: "staff@example.com", PasswordHash: "hash", Name: "Staff", Role: model.RoleAdmin}
	testDB.Create(admin)

	piece := &model.Masterpiece{
		Title:          "Heritage Ring",
		SerialNumber:   "AB-2026-020",
		Price:          60000,
		Status:         model.MasterpieceSold,
		CurrentOwnerID: &seller.ID,
	}
	testDB.Create(piece)

	return resaleService, testDB, seller, buyer, admin, piece
}

func pieceStatus(t *testing.T, testDB *gorm.DB, id uint) model.MasterpieceStatus {
	t.Helper()
	var piece model.Masterpiece
	require.NoError(t, testDB.First(&piece, id).Error)
	return piece.Status
}

func TestResaleService_Request_CapturesFee(t *testing.T) {
	svc, testDB, seller, _, _, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	assert.Equal(t, model.ResaleRequested, listing.Status)
	assert.Equal(t, 5.0, listing.PlatformFeePct) // policy in force at listing time
	assert.Equal(t, model.MasterpieceResalePending, pieceStatus(t, testDB, piece.ID))
}

func TestResaleService_Request_OnlyOwner(t *testing.T) {
	svc, _, _, buyer, _, piece := setupResaleServiceTest(t)

	_, err := svc.Request(piece.ID, buyer.ID, 70000)
	assert.ErrorIs(t, err, ErrResaleNotSeller)
}

func TestResaleService_Request_NoDuplicateListing(t *testing.T) {
	svc, _, seller, _, _, piece := setupResaleServiceTest(t)

	_, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)

	_, err = svc.Request(piece.ID, seller.ID, 75000)
	assert.ErrorIs(t, err, ErrResaleAlreadyListed)
}

func TestResaleService_Review_MovesPiece(t *testing.T) {
	svc, testDB, seller, _, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)

	_, err = svc.Review(listing.ID, admin.ID, true, "provenance verified")
	require.NoError(t, err)
	assert.Equal(t, model.MasterpieceListedPrivate, pieceStatus(t, testDB, piece.ID))
}

func TestResaleService_Review_DeclineRestoresPiece(t *testing.T) {
	svc, testDB, seller, _, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)

	_, err = svc.Review(listing.ID, admin.ID, false, "not eligible")
	require.NoError(t, err)
	assert.Equal(t, model.MasterpieceSold, pieceStatus(t, testDB, piece.ID))
}

func TestResaleService_SendMessage_RequiresApproval(t *testing.T) {
	svc, _, seller, buyer, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)

	offer := 65000.0
	_, err = svc.SendMessage(listing.ID, buyer.ID, "Would you take 65k?", &offer)
	assert.ErrorIs(t, err, ErrResaleNotApproved)

	_, err = svc.Review(listing.ID, admin.ID, true, "provenance verified")
	require.NoError(t, err)

	msg, err := svc.SendMessage(listing.ID, buyer.ID, "Would you take 65k?", &offer)
	require.NoError(t, err)
	require.NotNil(t, msg.Offer)
	assert.Equal(t, offer, *msg.Offer)
}

func TestResaleService_SellerCannotOffer(t *testing.T) {
	svc, _, seller, _, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	_, err = svc.Review(listing.ID, admin.ID, true, "")
	require.NoError(t, err)

	offer := 80000.0
	_, err = svc.SendMessage(listing.ID, seller.ID, "I offer more myself", &offer)
	assert.Error(t, err)
}

func TestResaleService_GetMessages_ParticipantsOnly(t *testing.T) {
	svc, testDB, seller, buyer, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	_, err = svc.Review(listing.ID, admin.ID, true, "")
	require.NoError(t, err)

	offer := 65000.0
	_, err = svc.SendMessage(listing.ID, buyer.ID, "Would you take 65k?", &offer)
	require.NoError(t, err)

	// Seller, the bidding buyer, and staff can read the thread
	for _, viewerID := range []uint{seller.ID, buyer.ID} {
		messages, err := svc.GetMessages(listing.ID, viewerID, false)
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	}
	messages, err := svc.GetMessages(listing.ID, admin.ID, true)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	// An uninvolved collector cannot
	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger", Role: model.RoleCollector}
	testDB.Create(stranger)
	_, err = svc.GetMessages(listing.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrResaleNotParticipant)
}

func TestResaleService_AcceptOffer_OpensEscrow(t *testing.T) {
	svc, testDB, seller, buyer, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	_, err = svc.Review(listing.ID, admin.ID, true, "")
	require.NoError(t, err)

	accepted, err := svc.AcceptOffer(listing.ID, seller.ID, buyer.ID, 65000)
	require.NoError(t, err)
	assert.Equal(t, model.ResaleAccepted, accepted.Status)
	require.NotNil(t, accepted.AgreedPrice)
	assert.Equal(t, 65000.0, *accepted.AgreedPrice)
	assert.Equal(t, model.MasterpieceEscrowPending, pieceStatus(t, testDB, piece.ID))

	var escrow model.EscrowTransaction
	require.NoError(t, testDB.Where("resale_id = ?", listing.ID).First(&escrow).Error)
	assert.Equal(t, model.EscrowHeld, escrow.Status)
	assert.Equal(t, model.EscrowFromResale, escrow.Source)
	assert.Equal(t, 65000.0, escrow.Amount)
	assert.True(t, escrow.WindowEndsAt.After(time.Now()))
}

func TestResaleService_AcceptOffer_SelfPurchase(t *testing.T) {
	svc, _, seller, _, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	_, err = svc.Review(listing.ID, admin.ID, true, "")
	require.NoError(t, err)

	_, err = svc.AcceptOffer(listing.ID, seller.ID, seller.ID, 65000)
	assert.ErrorIs(t, err, ErrResaleSelfPurchase)
}

func TestResaleService_Complete_SettlesEscrowAndReissuesCertificate(t *testing.T) {
	svc, testDB, seller, buyer, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	_, err = svc.Review(listing.ID, admin.ID, true, "")
	require.NoError(t, err)
	_, err = svc.AcceptOffer(listing.ID, seller.ID, buyer.ID, 65000)
	require.NoError(t, err)

	completed, err := svc.Complete(listing.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ResaleCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	var updated model.Masterpiece
	testDB.First(&updated, piece.ID)
	require.NotNil(t, updated.CurrentOwnerID)
	assert.Equal(t, buyer.ID, *updated.CurrentOwnerID)
	assert.Equal(t, model.MasterpieceSold, updated.Status)
	// The agreed price becomes the valuation of record
	assert.Equal(t, 65000.0, updated.Price)

	// The held escrow settles
	var escrow model.EscrowTransaction
	require.NoError(t, testDB.Where("resale_id = ?", listing.ID).First(&escrow).Error)
	assert.Equal(t, model.EscrowReleased, escrow.Status)
	assert.NotNil(t, escrow.ReleasedAt)

	// The new owner gets a fresh certificate
	var cert model.Certificate
	require.NoError(t, testDB.Where("masterpiece_id = ?", piece.ID).First(&cert).Error)
	assert.Equal(t, buyer.ID, cert.OwnerID)
	assert.NotEmpty(t, cert.Number)

	// Fee booked at the percentage captured on the listing
	var revenue model.RevenueEntry
	require.NoError(t, testDB.Where("source = ?", model.RevenueResaleFee).First(&revenue).Error)
	assert.Equal(t, 3250.0, revenue.Amount) // 5% of 65000

	var record model.OwnershipRecord
	require.NoError(t, testDB.Where("masterpiece_id = ? AND acquired_via = ?", piece.ID, "resale").First(&record).Error)
	assert.Equal(t, buyer.ID, record.OwnerID)
}

func TestResaleService_Complete_DisputedEscrowBlocks(t *testing.T) {
	svc, testDB, seller, buyer, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	_, err = svc.Review(listing.ID, admin.ID, true, "")
	require.NoError(t, err)
	_, err = svc.AcceptOffer(listing.ID, seller.ID, buyer.ID, 65000)
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.EscrowTransaction{}).
		Where("resale_id = ?", listing.ID).
		Update("status", model.EscrowDisputed).Error)

	_, err = svc.Complete(listing.ID, admin.ID)
	assert.ErrorIs(t, err, ErrEscrowUnderDispute)
}

func TestResaleService_Complete_RequiresAcceptedOffer(t *testing.T) {
	svc, _, seller, _, admin, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)
	_, err = svc.Review(listing.ID, admin.ID, true, "")
	require.NoError(t, err)

	_, err = svc.Complete(listing.ID, admin.ID)
	assert.ErrorIs(t, err, ErrResaleNotApproved)
}

func TestResaleService_Withdraw(t *testing.T) {
	svc, testDB, seller, buyer, _, piece := setupResaleServiceTest(t)

	listing, err := svc.Request(piece.ID, seller.ID, 70000)
	require.NoError(t, err)

	_, err = svc.Withdraw(listing.ID, buyer.ID)
	assert.ErrorIs(t, err, ErrResaleNotSeller)

	withdrawn, err := svc.Withdraw(listing.ID, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ResaleWithdrawn, withdrawn.Status)
	assert.Equal(t, model.MasterpieceSold, pieceStatus(t, testDB, piece.ID))
}
