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
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/util"
)

func setupCRMServiceTest(t *testing.T) (CRMService, *gorm.DB, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	crmRepo := repository.NewCRMRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)
	notifications := NewNotificationService(notificationRepo, nil)
	svc := NewCRMService(crmRepo, userRepo, notifications)

	member := &model.User{Email: "member@example.com", PasswordHash: "hash", Name: "Member", Role: model.RoleCollector}
	testDB.Create(member)
	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", Name: "Admin", Role: model.RoleAdmin}
	testDB.Create(admin)

	return svc, testDB, member, admin
}

func TestCRMService_ConciergeFlow(t *testing.T) {
	svc, _, member, admin := setupCRMServiceTest(t)

	request, err := svc.OpenConciergeRequest(member.ID, "Sizing adjustment", "Can the band be resized?")
	require.NoError(t, err)
	assert.Equal(t, model.ConciergeOpen, request.Status)

	// Staff reply assigns the request and moves it in progress.
	_, err = svc.ReplyToConciergeRequest(request.ID, admin.ID, true, "Of course, send it in.")
	require.NoError(t, err)

	updated, err := svc.GetConciergeRequest(request.ID, admin.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.ConciergeInProgress, updated.Status)
	require.NotNil(t, updated.AssignedToID)
	assert.Equal(t, admin.ID, *updated.AssignedToID)

	require.NoError(t, svc.CloseConciergeRequest(request.ID, admin.ID))

	_, err = svc.ReplyToConciergeRequest(request.ID, member.ID, false, "One more thing")
	assert.ErrorIs(t, err, ErrConciergeClosed)
}

func TestCRMService_Concierge_OtherUserCannotSee(t *testing.T) {
	svc, testDB, member, _ := setupCRMServiceTest(t)

	request, err := svc.OpenConciergeRequest(member.ID, "Private matter", "")
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleCollector}
	testDB.Create(other)

	_, err = svc.GetConciergeRequest(request.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrConciergeNotFound)
}

func TestCRMService_ReviewApplication_Approve(t *testing.T) {
	svc, testDB, _, admin := setupCRMServiceTest(t)

	application, err := svc.SubmitApplication(ApplicationInput{
		Email:      "applicant@example.com",
		Name:       "New Applicant",
		Motivation: "Lifelong admirer of the house",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, application.Status)

	reviewed, tempPassword, err := svc.ReviewApplication(application.ID, admin.ID, true, "welcome")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, reviewed.Status)
	require.NotEmpty(t, tempPassword)

	var user model.User
	require.NoError(t, testDB.Where("email = ?", "applicant@example.com").First(&user).Error)
	assert.Equal(t, model.RoleCollector, user.Role)
	assert.True(t, util.VerifyPassword(user.PasswordHash, tempPassword))

	// A decided application cannot be reviewed again.
	_, _, err = svc.ReviewApplication(application.ID, admin.ID, false, "")
	assert.ErrorIs(t, err, ErrApplicationDecided)
}

func TestCRMService_ReviewApplication_Reject(t *testing.T) {
	svc, _, _, admin := setupCRMServiceTest(t)

	application, err := svc.SubmitApplication(ApplicationInput{Email: "reject@example.com", Name: "Rejected"})
	require.NoError(t, err)

	reviewed, tempPassword, err := svc.ReviewApplication(application.ID, admin.ID, false, "not a fit")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, reviewed.Status)
	assert.Empty(t, tempPassword)
	assert.Equal(t, "not a fit", reviewed.ReviewNote)
}

func TestCRMService_SubmitApplication_EmailTaken(t *testing.T) {
	svc, _, member, _ := setupCRMServiceTest(t)

	_, err := svc.SubmitApplication(ApplicationInput{Email: member.Email, Name: "Duplicate"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCRMService_ReviewInvestorRequest(t *testing.T) {
	svc, testDB, member, admin := setupCRMServiceTest(t)

	request, err := svc.SubmitInvestorRequest(member.ID, "Bellanova Capital", "Requesting revenue access")
	require.NoError(t, err)

	reviewed, err := svc.ReviewInvestorRequest(request.ID, admin.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, reviewed.Status)

	var user model.User
	require.NoError(t, testDB.First(&user, member.ID).Error)
	assert.Equal(t, model.RoleInvestor, user.Role)

	_, err = svc.ReviewInvestorRequest(request.ID, admin.ID, false)
	assert.ErrorIs(t, err, ErrApplicationDecided)
}

func TestCRMService_RSVP_CapacityWaitlists(t *testing.T) {
	svc, testDB, member, _ := setupCRMServiceTest(t)

	event := &model.PrivateEvent{
		Title:    "Atelier Evening",
		Location: "Geneva",
		StartsAt: time.Now().Add(24 * time.Hour),
		EndsAt:   time.Now().Add(28 * time.Hour),
		Capacity: 1,
	}
	require.NoError(t, svc.CreateEvent(event))

	first, err := svc.RSVP(event.ID, member.ID, model.RoleCollector, true)
	require.NoError(t, err)
	assert.Equal(t, model.RSVPConfirmed, first.Status)

	late := &model.User{Email: "late@example.com", PasswordHash: "hash", Name: "Late", Role: model.RoleCollector}
	testDB.Create(late)

	second, err := svc.RSVP(event.ID, late.ID, model.RoleCollector, true)
	require.NoError(t, err)
	assert.Equal(t, model.RSVPWaitlisted, second.Status)

	// Declining updates the existing RSVP rather than creating another.
	declined, err := svc.RSVP(event.ID, member.ID, model.RoleCollector, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, declined.ID)
	assert.Equal(t, model.RSVPDeclined, declined.Status)
}

func TestCRMService_RSVP_VIPOnlyAndEnded(t *testing.T) {
	svc, _, member, _ := setupCRMServiceTest(t)

	vipEvent := &model.PrivateEvent{
		Title:    "Vault Viewing",
		StartsAt: time.Now().Add(time.Hour),
		EndsAt:   time.Now().Add(3 * time.Hour),
		VIPOnly:  true,
	}
	require.NoError(t, svc.CreateEvent(vipEvent))

	_, err := svc.RSVP(vipEvent.ID, member.ID, model.RoleCollector, true)
	assert.ErrorIs(t, err, ErrEventNotFound)

	past := &model.PrivateEvent{
		Title:    "Last Season",
		StartsAt: time.Now().Add(-48 * time.Hour),
		EndsAt:   time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, svc.CreateEvent(past))

	_, err = svc.RSVP(past.ID, member.ID, model.RoleCollector, true)
	assert.ErrorIs(t, err, ErrEventOver)
}

func TestCRMService_Interactions(t *testing.T) {
	svc, _, member, admin := setupCRMServiceTest(t)

	interaction, err := svc.RecordInteraction(member.ID, admin.ID, "phone", "Discussed upcoming commission", time.Time{})
	require.NoError(t, err)
	assert.False(t, interaction.OccurredAt.IsZero())

	interactions, err := svc.GetInteractions(member.ID)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, "phone", interactions[0].Channel)
}
