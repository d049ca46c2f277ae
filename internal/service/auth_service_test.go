package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

const testJWTSecret = "test-secret"

func newAuthService() (*AuthService, *MockUserRepository, *MockEmailSender) {
	users := new(MockUserRepository)
	sender := new(MockEmailSender)
	// Welcome mail goes out on a goroutine, so it is never a required
	// expectation.
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := NewAuthService(users, sender,
		config.JWTConfig{Secret: testJWTSecret, TTL: time.Hour},
		"https://shop.example.com", logger.NoOp{})
	return svc, users, sender
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register_IssuesParsableToken(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	users.On("GetByEmail", ctx, "asha@example.com").Return(nil, repository.ErrNotFound)
	users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return("user-1", nil)

	user, token, err := svc.Register(ctx, "Asha Rao", "asha@example.com", "secret123", "9999999999")

	assert.NoError(t, err)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	claims, err := ParseToken(token, testJWTSecret)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(entity.RoleUser), claims.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	existing := entity.NewUser("Asha Rao", "asha@example.com", "hash", "")
	users.On("GetByEmail", ctx, "asha@example.com").Return(existing, nil)

	_, _, err := svc.Register(ctx, "Asha Rao", "asha@example.com", "secret123", "")

	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordLookTheSame(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	user := entity.NewUser("Asha Rao", "asha@example.com", mustHash(t, "secret123"), "")
	user.ID = "user-1"
	users.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrNotFound)

	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "whatever")
	_, _, errWrongPass := svc.Login(ctx, "asha@example.com", "not-the-password")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	user := entity.NewUser("Asha Rao", "asha@example.com", mustHash(t, "secret123"), "")
	user.IsActive = false
	users.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	_, _, err := svc.Login(ctx, "asha@example.com", "secret123")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	user := entity.NewUser("Asha Rao", "asha@example.com", mustHash(t, "secret123"), "")
	user.ID = "user-1"
	users.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	users.On("UpdateLastLogin", ctx, "user-1", mock.AnythingOfType("time.Time")).Return(nil)

	loggedIn, token, err := svc.Login(ctx, "asha@example.com", "secret123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, loggedIn.LastLogin)
}

func TestAuthService_ForgotPassword_EmailFailureClearsToken(t *testing.T) {
	svc, users, sender := newAuthService()
	ctx := context.Background()

	user := entity.NewUser("Asha Rao", "asha@example.com", "hash", "")
	user.ID = "user-1"
	users.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	users.On("Update", ctx, user).Return(nil)

	sender.ExpectedCalls = nil
	sender.On("Send", mock.Anything, []string{"asha@example.com"}, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp unreachable"))

	err := svc.ForgotPassword(ctx, "asha@example.com")

	assert.Error(t, err)
	assert.Empty(t, user.ResetPasswordToken)
	assert.Nil(t, user.ResetPasswordExpire)
	// Update runs twice, once to store the token and once to clear it.
	users.AssertNumberOfCalls(t, "Update", 2)
}

func TestAuthService_ForgotPassword_StoresHashedTokenOnly(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	user := entity.NewUser("Asha Rao", "asha@example.com", "hash", "")
	user.ID = "user-1"
	users.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	users.On("Update", ctx, user).Return(nil)

	err := svc.ForgotPassword(ctx, "asha@example.com")

	assert.NoError(t, err)
	// SHA-256 hex is 64 characters; the raw token is 64 hex characters of
	// random bytes, so equality would only hold by accident.
	assert.Len(t, user.ResetPasswordToken, 64)
	assert.NotNil(t, user.ResetPasswordExpire)
	assert.True(t, user.ResetPasswordExpire.After(time.Now()))
}

func TestAuthService_ResetPassword_InvalidToken(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	users.On("FindByResetToken", ctx, mock.Anything, mock.AnythingOfType("time.Time")).
		Return(nil, repository.ErrNotFound)

	err := svc.ResetPassword(ctx, "deadbeef", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestAuthService_ResetPassword_ClearsTokenAndRehashes(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	expire := time.Now().Add(10 * time.Minute)
	user := entity.NewUser("Asha Rao", "asha@example.com", mustHash(t, "oldsecret"), "")
	user.ID = "user-1"
	user.ResetPasswordToken = hashToken("raw-token")
	user.ResetPasswordExpire = &expire

	users.On("FindByResetToken", ctx, hashToken("raw-token"), mock.AnythingOfType("time.Time")).
		Return(user, nil)
	users.On("Update", ctx, user).Return(nil)

	err := svc.ResetPassword(ctx, "raw-token", "newsecret")

	assert.NoError(t, err)
	assert.Empty(t, user.ResetPasswordToken)
	assert.Nil(t, user.ResetPasswordExpire)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")))
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	user := entity.NewUser("Asha Rao", "asha@example.com", mustHash(t, "secret123"), "")
	user.ID = "user-1"
	users.On("GetByID", ctx, "user-1").Return(user, nil)

	err := svc.ChangePassword(ctx, "user-1", "wrong", "newsecret")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_AddAddress_FirstBecomesDefault(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	user := entity.NewUser("Asha Rao", "asha@example.com", "hash", "")
	user.ID = "user-1"
	users.On("GetByID", ctx, "user-1").Return(user, nil)
	users.On("Update", ctx, user).Return(nil)

	updated, err := svc.AddAddress(ctx, "user-1", entity.Address{
		Street: "14 Market Road", City: "Pune", State: "MH", ZipCode: "411001",
	})

	assert.NoError(t, err)
	assert.Len(t, updated.Addresses, 1)
	assert.True(t, updated.Addresses[0].IsDefault)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	users.On("GetByEmail", ctx, "asha@example.com").Return(nil, repository.ErrNotFound)
	users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return("user-1", nil)

	_, token, err := svc.Register(ctx, "Asha Rao", "asha@example.com", "secret123", "")
	assert.NoError(t, err)

	_, err = ParseToken(token, "some-other-secret")
	assert.Error(t, err)
}
