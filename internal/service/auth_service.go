package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/email"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost      = 10
	resetTokenTTL   = 15 * time.Minute
	resetTokenBytes = 32
	emailTimeout    = 15 * time.Second
)

// Claims is the JWT payload for storefront sessions.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users       repository.UserRepository
	sender      email.Sender
	jwtCfg      config.JWTConfig
	frontendURL string
	log         logger.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sender email.Sender,
	jwtCfg config.JWTConfig,
	frontendURL string,
	log logger.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		sender:      sender,
		jwtCfg:      jwtCfg,
		frontendURL: frontendURL,
		log:         log,
	}
}

func (s *AuthService) Register(ctx context.Context, name, emailAddr, password, phone string) (*entity.User, string, error) {
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := entity.NewUser(name, emailAddr, string(hash), phone)
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.sendAsync(user.Email, email.WelcomeMessage(user.Name))
	s.log.Infof("Registered user %s", user.ID)
	return user, token, nil
}

// Login deliberately returns the same error for an unknown email and a wrong
// password.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*entity.User, string, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warnf("Failed to update last login for %s: %v", user.ID, err)
	}
	user.LastLogin = &now

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, phone string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if phone != "" {
		user.Phone = phone
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ForgotPassword stores only the SHA-256 of the token; the raw value exists
// solely in the email. If the email cannot be delivered the token fields are
// cleared so no orphaned token stays valid.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)
	tokenHash := hashToken(rawToken)

	user.SetResetToken(tokenHash, time.Now().UTC().Add(resetTokenTTL))
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, rawToken)
	msg := email.PasswordResetMessage(user.Name, resetURL)
	if err := s.sender.Send(ctx, []string{user.Email}, msg.Subject, msg.BodyHTML, msg.BodyText); err != nil {
		user.ClearResetToken()
		if clearErr := s.users.Update(ctx, user); clearErr != nil {
			s.log.Errorf("Failed to clear reset token for %s: %v", user.ID, clearErr)
		}
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, hashToken(rawToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.ClearResetToken()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	s.log.Infof("Password reset for user %s", user.ID)
	return nil
}

func (s *AuthService) AddAddress(ctx context.Context, userID string, addr entity.Address) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.AddAddress(addr)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	return user, nil
}

func (s *AuthService) UpdateAddress(ctx context.Context, userID, addressID string, addr entity.Address) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateAddress(addressID, addr); err != nil {
		return nil, repository.ErrNotFound
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return user, nil
}

func (s *AuthService) DeleteAddress(ctx context.Context, userID, addressID string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.RemoveAddress(addressID); err != nil {
		return nil, repository.ErrNotFound
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to delete address: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *entity.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns its claims. Used by the
// HTTP auth middleware.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *AuthService) sendAsync(to string, msg email.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()
		if err := s.sender.Send(ctx, []string{to}, msg.Subject, msg.BodyHTML, msg.BodyText); err != nil {
			s.log.Warnf("Best-effort email to %s failed: %v", to, err)
		}
	}()
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
