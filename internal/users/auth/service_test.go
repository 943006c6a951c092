// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepensieveindex/pensieve-api/internal/audit"
	"github.com/thepensieveindex/pensieve-api/internal/platform/apperr"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
	"github.com/thepensieveindex/pensieve-api/internal/users/auth"
)

// # In-Memory Fakes

type memoryUserRepository struct {
	users []*auth.User
}

func (repo *memoryUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.ID == id && user.IsActive {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email == email && user.IsActive {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Username == username && user.IsActive {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) Create(_ context.Context, user *auth.User) error {
	repo.users = append(repo.users, user)
	return nil
}

func (repo *memoryUserRepository) UpdateRole(_ context.Context, userID, role string) error {
	for _, user := range repo.users {
		if user.ID == userID {
			user.Role = sec.UserRole(role)
			return nil
		}
	}
	return apperr.NotFound("User")
}

type memorySessionRepository struct {
	sessions map[string]*auth.Session
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{sessions: map[string]*auth.Session{}}
}

func (repo *memorySessionRepository) Create(_ context.Context, session *auth.Session) error {
	repo.sessions[session.TokenHash] = session
	return nil
}

func (repo *memorySessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	session, ok := repo.sessions[tokenHash]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	return session, nil
}

func (repo *memorySessionRepository) Revoke(_ context.Context, tokenHash string) error {
	delete(repo.sessions, tokenHash)
	return nil
}

// stubTokenProvider mints predictable tokens so tests assert flow, not JWTs.
type stubTokenProvider struct {
	issued int
}

func (provider *stubTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	provider.issued++
	return fmt.Sprintf("token-%s-%d", userID, provider.issued), nil
}

type memoryRecorder struct {
	entries []audit.Entry
}

func (recorder *memoryRecorder) Record(_ context.Context, entry audit.Entry) error {
	recorder.entries = append(recorder.entries, entry)
	return nil
}

type testHarness struct {
	service  *auth.Service
	users    *memoryUserRepository
	sessions *memorySessionRepository
	auditor  *memoryRecorder
}

func newTestHarness() *testHarness {
	users := &memoryUserRepository{}
	sessions := newMemorySessionRepository()
	auditor := &memoryRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testHarness{
		service:  auth.NewService(users, sessions, &stubTokenProvider{}, auditor, logger),
		users:    users,
		sessions: sessions,
		auditor:  auditor,
	}
}

func validRegistration() auth.RegisterInput {
	return auth.RegisterInput{
		Username: "reader",
		Email:    "reader@pensieveindex.app",
		Password: "correct horse battery",
	}
}

// # Registration

/*
TestService_Register verifies the happy path: hashed password, defaulted
display name, member role.
*/
func TestService_Register(t *testing.T) {
	harness := newTestHarness()

	user, err := harness.service.Register(context.Background(), validRegistration())

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "reader", user.DisplayName)
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct horse battery", user.PasswordHash))
}

/*
TestService_Register_Validation covers the field-level rejection cases.
*/
func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*auth.RegisterInput)
	}{
		{"short_username", func(in *auth.RegisterInput) { in.Username = "ab" }},
		{"bad_email", func(in *auth.RegisterInput) { in.Email = "not-an-email" }},
		{"short_password", func(in *auth.RegisterInput) { in.Password = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			harness := newTestHarness()
			input := validRegistration()
			tt.mutate(&input)

			_, err := harness.service.Register(context.Background(), input)

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

/*
TestService_Register_Conflicts verifies duplicate email and username each
surface as a client-safe conflict.
*/
func TestService_Register_Conflicts(t *testing.T) {
	harness := newTestHarness()
	_, err := harness.service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	duplicateEmail := validRegistration()
	duplicateEmail.Username = "other"
	_, err = harness.service.Register(context.Background(), duplicateEmail)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	duplicateUsername := validRegistration()
	duplicateUsername.Email = "other@pensieveindex.app"
	_, err = harness.service.Register(context.Background(), duplicateUsername)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

// # Login & Sessions

/*
TestService_Login verifies credential checks and the generic failure
message for both unknown users and wrong passwords.
*/
func TestService_Login(t *testing.T) {
	harness := newTestHarness()
	_, err := harness.service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	// By email
	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Login: "reader@pensieveindex.app", Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "reader", session.User.Username)

	// By username
	_, err = harness.service.Login(context.Background(), auth.LoginInput{
		Login: "reader", Password: "correct horse battery",
	})
	require.NoError(t, err)

	// Wrong password and unknown user share one message to prevent enumeration
	_, wrongPassword := harness.service.Login(context.Background(), auth.LoginInput{
		Login: "reader", Password: "wrong",
	})
	_, unknownUser := harness.service.Login(context.Background(), auth.LoginInput{
		Login: "nobody", Password: "correct horse battery",
	})
	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

/*
TestService_RefreshRotation verifies the old refresh token dies with the
rotation and the new one works.
*/
func TestService_RefreshRotation(t *testing.T) {
	harness := newTestHarness()
	_, err := harness.service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	first, err := harness.service.Login(context.Background(), auth.LoginInput{
		Login: "reader", Password: "correct horse battery",
	})
	require.NoError(t, err)

	second, err := harness.service.RefreshSession(context.Background(), first.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	// Replaying the rotated-out token must fail
	_, err = harness.service.RefreshSession(context.Background(), first.RefreshToken, "", "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// The fresh token still works
	_, err = harness.service.RefreshSession(context.Background(), second.RefreshToken, "", "")
	assert.NoError(t, err)
}

/*
TestService_Logout verifies revocation and idempotency on unknown tokens.
*/
func TestService_Logout(t *testing.T) {
	harness := newTestHarness()
	_, err := harness.service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Login: "reader", Password: "correct horse battery",
	})
	require.NoError(t, err)

	require.NoError(t, harness.service.Logout(context.Background(), session.RefreshToken))

	_, err = harness.service.RefreshSession(context.Background(), session.RefreshToken, "", "")
	assert.Error(t, err)

	// Unknown and empty tokens both log out cleanly
	assert.NoError(t, harness.service.Logout(context.Background(), "never-issued"))
	assert.NoError(t, harness.service.Logout(context.Background(), ""))
}

// # Role Administration

/*
TestService_SetRole verifies the role update lands and leaves an audit
trail naming the actor.
*/
func TestService_SetRole(t *testing.T) {
	harness := newTestHarness()
	user, err := harness.service.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	err = harness.service.SetRole(context.Background(), "admin-1", user.ID, string(sec.RoleFandomAdmin))
	require.NoError(t, err)
	assert.Equal(t, sec.RoleFandomAdmin, user.Role)

	require.Len(t, harness.auditor.entries, 1)
	entry := harness.auditor.entries[0]
	assert.Equal(t, "admin-1", entry.ActorID)
	assert.Equal(t, audit.EntityUser, entry.EntityType)
	assert.Equal(t, user.ID, entry.EntityID)

	// Unknown roles never reach storage
	err = harness.service.SetRole(context.Background(), "admin-1", user.ID, "overlord")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
