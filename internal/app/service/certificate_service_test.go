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

func setupCertificateServiceTest(t *testing.T) (CertificateService, *gorm.DB, *model.Certificate, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	certificateRepo := repository.NewCertificateRepository(testDB)
	masterpieceRepo := repository.NewMasterpieceRepository(testDB)
	svc := NewCertificateService(certificateRepo, masterpieceRepo)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner", Role: model.RoleVIP}
	testDB.Create(owner)

	piece := &model.Masterpiece{
		Title:        "Certified Piece",
		SerialNumber: "AB-2026-050",
		Price:        75000,
		Status:       model.MasterpieceSold,
		RarityScore:  72,
	}
	testDB.Create(piece)

	cert := &model.Certificate{
		MasterpieceID:     piece.ID,
		OwnerID:           owner.ID,
		Number:            "CERT-2026-0001",
		VerificationToken: "tok-abc-123",
		RarityScore:       72,
		IssuedAt:          time.Now(),
	}
	testDB.Create(cert)

	return svc, testDB, cert, owner
}

func TestCertificateService_Verify(t *testing.T) {
	svc, _, cert, _ := setupCertificateServiceTest(t)

	result, err := svc.Verify(cert.VerificationToken)
	require.NoError(t, err)
	assert.True(t, result.Authentic)
	assert.Equal(t, "CERT-2026-0001", result.Number)
	assert.Equal(t, "Certified Piece", result.PieceTitle)
	assert.Equal(t, "AB-2026-050", result.SerialNumber)
	assert.Equal(t, 72, result.RarityScore)
}

func TestCertificateService_Verify_UnknownToken(t *testing.T) {
	svc, _, _, _ := setupCertificateServiceTest(t)

	_, err := svc.Verify("no-such-token")
	assert.ErrorIs(t, err, ErrInvalidVerification)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrInvalidVerification)
}

func TestCertificateService_Get_OwnerOrAdmin(t *testing.T) {
	svc, testDB, cert, owner := setupCertificateServiceTest(t)

	got, err := svc.Get(cert.ID, owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, got.ID)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger", Role: model.RoleCollector}
	testDB.Create(stranger)

	_, err = svc.Get(cert.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrCertificateNotFound)

	asAdmin, err := svc.Get(cert.ID, stranger.ID, true)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, asAdmin.ID)
}

func TestCertificateService_ListByOwner(t *testing.T) {
	svc, _, cert, owner := setupCertificateServiceTest(t)

	certs, err := svc.ListByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, cert.Number, certs[0].Number)
}
