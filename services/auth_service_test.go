package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/TechbroSam/jogiloran/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	users map[string]*models.User // keyed by email
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*models.User)}
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (r *memoryUserRepo) FindByResetToken(ctx context.Context, hashedToken string) (*models.User, error) {
	for _, user := range r.users {
		if user.ResetPasswordToken == hashedToken && user.ResetPasswordExpiry.After(time.Now()) {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.Email] = user
	return nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.Email] = user
	return nil
}

type authFixture struct {
	repo   *memoryUserRepo
	sender *recordingSender
	svc    *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		repo:   newMemoryUserRepo(),
		sender: &recordingSender{},
	}
	tokens := NewTokenService("test-secret")
	f.svc = NewAuthService(f.repo, tokens, f.sender, "https://shop.example.com", zap.NewNop())
	return f
}

func TestRegister_And_Login(t *testing.T) {
	f := newAuthFixture()

	serviceErr := f.svc.Register(context.Background(), "Jo", "Bloggs", "jo@example.com", "Str0ng!pass")
	require.Nil(t, serviceErr)

	stored := f.repo.users["jo@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Str0ng!pass", stored.Password, "password must be hashed")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Str0ng!pass")))

	token, user, serviceErr := f.svc.Login(context.Background(), "jo@example.com", "Str0ng!pass")
	require.Nil(t, serviceErr)
	assert.NotEmpty(t, token)
	assert.Equal(t, "jo@example.com", user.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	require.Nil(t, f.svc.Register(context.Background(), "Jo", "Bloggs", "jo@example.com", "Str0ng!pass"))

	serviceErr := f.svc.Register(context.Background(), "Jo", "Bloggs", "jo@example.com", "Str0ng!pass")

	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusConflict, serviceErr.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	require.Nil(t, f.svc.Register(context.Background(), "Jo", "Bloggs", "jo@example.com", "Str0ng!pass"))

	_, _, serviceErr := f.svc.Login(context.Background(), "jo@example.com", "wrong-password")

	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)
	assert.Equal(t, "Invalid email or password.", serviceErr.Message)
}

func TestLogin_UnknownEmailSameMessage(t *testing.T) {
	f := newAuthFixture()

	_, _, serviceErr := f.svc.Login(context.Background(), "nobody@example.com", "whatever")

	require.NotNil(t, serviceErr)
	assert.Equal(t, "Invalid email or password.", serviceErr.Message)
}

func TestRequestPasswordReset_UnknownEmailDoesNotReveal(t *testing.T) {
	f := newAuthFixture()

	msg, serviceErr := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")

	require.Nil(t, serviceErr)
	assert.Contains(t, msg, "If an account with this email exists")
	assert.Empty(t, f.sender.sent, "no email for unknown account")
}

// resetTokenFromEmail pulls the raw token out of the reset link in the last
// sent email body.
func resetTokenFromEmail(t *testing.T, body string) string {
	t.Helper()
	marker := "/reset-password?token="
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, "reset link missing from email body")
	rest := body[idx+len(marker):]
	end := strings.IndexAny(rest, `"'<`)
	require.Greater(t, end, 0)
	return rest[:end]
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture()
	require.Nil(t, f.svc.Register(context.Background(), "Jo", "Bloggs", "jo@example.com", "Str0ng!pass"))

	_, serviceErr := f.svc.RequestPasswordReset(context.Background(), "jo@example.com")
	require.Nil(t, serviceErr)
	require.Len(t, f.sender.sent, 1)

	token := resetTokenFromEmail(t, f.sender.lastBody)
	assert.Len(t, token, 40, "20 random bytes hex encoded")
	assert.NotEqual(t, token, f.repo.users["jo@example.com"].ResetPasswordToken, "stored token must be hashed")

	serviceErr = f.svc.ResetPassword(context.Background(), token, "N3w!password")
	require.Nil(t, serviceErr)

	// Old password no longer works, new one does, token is spent.
	_, _, loginErr := f.svc.Login(context.Background(), "jo@example.com", "Str0ng!pass")
	require.NotNil(t, loginErr)
	_, _, loginErr = f.svc.Login(context.Background(), "jo@example.com", "N3w!password")
	require.Nil(t, loginErr)

	serviceErr = f.svc.ResetPassword(context.Background(), token, "An0ther!pass")
	require.NotNil(t, serviceErr)
	assert.Contains(t, serviceErr.Message, "invalid or has expired")
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newAuthFixture()
	require.Nil(t, f.svc.Register(context.Background(), "Jo", "Bloggs", "jo@example.com", "Str0ng!pass"))

	_, serviceErr := f.svc.RequestPasswordReset(context.Background(), "jo@example.com")
	require.Nil(t, serviceErr)
	token := resetTokenFromEmail(t, f.sender.lastBody)

	f.repo.users["jo@example.com"].ResetPasswordExpiry = time.Now().Add(-time.Minute)

	serviceErr = f.svc.ResetPassword(context.Background(), token, "N3w!password")
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusBadRequest, serviceErr.StatusCode)
}

func TestResetPassword_PolicyRejectsWeakPasswords(t *testing.T) {
	f := newAuthFixture()

	weak := []string{
		"Sh0rt!a",      // 7 chars
		"alllower1!",   // no uppercase
		"NoDigits!!",   // no digit
		"NoSpecial123", // no special
	}
	for _, password := range weak {
		serviceErr := f.svc.ResetPassword(context.Background(), "some-token", password)
		require.NotNil(t, serviceErr, "password %q should be rejected", password)
		assert.Equal(t, http.StatusBadRequest, serviceErr.StatusCode)
		assert.Contains(t, serviceErr.Message, "requirements")
	}
}

func TestPasswordMeetsPolicy(t *testing.T) {
	assert.True(t, passwordMeetsPolicy("Str0ng!pass"))
	assert.True(t, passwordMeetsPolicy("Apple123#extra"))
	assert.False(t, passwordMeetsPolicy("weak"))
	assert.False(t, passwordMeetsPolicy("longenoughbutplain"))
}
