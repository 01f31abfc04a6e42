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

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, &testConfig().JWT, false), testDB
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, pair, err := svc.Register("new@example.com", "secret-password", "New Collector", "+49 170 0000000", "DE")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCollector, user.Role)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	loggedIn, loginPair, err := svc.Login("new@example.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginPair.AccessToken)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	_, _, err := svc.Register("dup@example.com", "pw1", "First", "", "")
	require.NoError(t, err)

	_, _, err = svc.Register("dup@example.com", "pw2", "Second", "", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	_, _, err := svc.Register("who@example.com", "right-password", "Who", "", "")
	require.NoError(t, err)

	_, _, err = svc.Login("who@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	_, pair, err := svc.Register("refresh@example.com", "pw", "Refresh", "", "")
	require.NoError(t, err)

	fresh, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
}

func TestAuthService_PromoteToVIP(t *testing.T) {
	svc, testDB := setupAuthServiceTest(t)

	user, _, err := svc.Register("vip@example.com", "pw", "Soon VIP", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.PromoteToVIP(user.ID))

	var promoted model.User
	testDB.First(&promoted, user.ID)
	assert.Equal(t, model.RoleVIP, promoted.Role)
	require.NotNil(t, promoted.VIPSince)

	// Promoting again keeps the original promotion date
	first := *promoted.VIPSince
	require.NoError(t, svc.PromoteToVIP(user.ID))
	testDB.First(&promoted, user.ID)
	assert.Equal(t, first.Unix(), promoted.VIPSince.Unix())
}

func TestAuthService_PromoteToVIP_AdminKeepsRole(t *testing.T) {
	svc, testDB := setupAuthServiceTest(t)

	admin := &model.User{Email: "staff@example.com", PasswordHash: "hash", Name: "Staff", Role: model.RoleAdmin}
	testDB.Create(admin)

	require.NoError(t, svc.PromoteToVIP(admin.ID))

	var unchanged model.User
	testDB.First(&unchanged, admin.ID)
	assert.Equal(t, model.RoleAdmin, unchanged.Role)
}
