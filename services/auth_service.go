package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
	"unicode"

	emailpkg "github.com/TechbroSam/jogiloran/email"
	"github.com/TechbroSam/jogiloran/models"
	"github.com/TechbroSam/jogiloran/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const passwordSpecials = "!@#$%&*"

const resetMessage = "If an account with this email exists, a reset link has been sent."

// AuthService handles registration and the password reset flow. Session
// issuance lives in TokenService.
type AuthService struct {
	users   repository.UserRepository
	tokens  *TokenService
	sender  emailpkg.EmailSender
	baseURL string
	logger  *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, sender emailpkg.EmailSender, baseURL string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		sender:  sender,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Register creates a new customer account.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, userEmail, password string) *ServiceError {
	_, err := s.users.FindByEmail(ctx, userEmail)
	if err == nil {
		return &ServiceError{StatusCode: http.StatusConflict, Message: "User with this email already exists."}
	}
	if err != mongo.ErrNoDocuments {
		s.logger.Error("Registration lookup failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An internal server error occurred."}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An internal server error occurred."}
	}

	user := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     userEmail,
		Password:  string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An internal server error occurred."}
	}

	return nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, userEmail, password string) (string, *models.User, *ServiceError) {
	invalid := &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password."}

	user, err := s.users.FindByEmail(ctx, userEmail)
	if err != nil {
		return "", nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, invalid
	}

	role := RoleCustomer
	if user.IsAdmin {
		role = RoleAdmin
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Email, role)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return "", nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An internal server error occurred."}
	}
	return token, user, nil
}

// RequestPasswordReset issues a reset token and emails the reset link. The
// response message never reveals whether the account exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, userEmail string) (string, *ServiceError) {
	user, err := s.users.FindByEmail(ctx, userEmail)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return resetMessage, nil
		}
		s.logger.Error("Reset lookup failed", zap.Error(err))
		return "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An error occurred."}
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		s.logger.Error("Failed to generate reset token", zap.Error(err))
		return "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An error occurred."}
	}
	resetToken := hex.EncodeToString(raw)

	user.ResetPasswordToken = hashToken(resetToken)
	user.ResetPasswordExpiry = time.Now().Add(time.Hour)
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("Failed to store reset token", zap.Error(err))
		return "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An error occurred."}
	}

	resetURL := s.baseURL + "/reset-password?token=" + resetToken
	subject, body, err := emailpkg.RenderPasswordReset(resetURL)
	if err != nil {
		return "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An error occurred."}
	}
	if _, err := s.sender.SendEmail(ctx, user.Email, subject, body); err != nil {
		s.logger.Error("Failed to send reset email", zap.String("to", user.Email), zap.Error(err))
		return "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An error occurred."}
	}

	return "A reset link has been sent.", nil
}

// ResetPassword validates the token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) *ServiceError {
	if token == "" || password == "" {
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Missing token or password."}
	}
	if !passwordMeetsPolicy(password) {
		return &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Password does not meet the requirements. It must be at least 8 characters long and include an uppercase letter, a number, and a special character.",
		}
	}

	user, err := s.users.FindByResetToken(ctx, hashToken(token))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Password reset token is invalid or has expired."}
		}
		s.logger.Error("Reset token lookup failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An internal server error occurred."}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An internal server error occurred."}
	}

	user.Password = string(hashed)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpiry = time.Time{}
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "An internal server error occurred."}
	}

	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// passwordMeetsPolicy enforces the storefront password policy: at least 8
// characters with an uppercase letter, a digit, and a special character.
func passwordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasDigit && strings.ContainsAny(password, passwordSpecials)
}
