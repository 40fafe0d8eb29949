package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"geo-survey/survey-portal/survey-portal-backend/internal/config"
	"geo-survey/survey-portal/survey-portal-backend/internal/users"
	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
)

// Claims carries the authenticated user's identity inside the token
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
}

type Service struct {
	repo   users.Repository
	secret []byte
	expiry time.Duration
	logger *zap.Logger
}

func NewService(repo users.Repository, cfg config.SecurityConfig, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.TokenExpiry,
		logger: logger,
	}
}

// Login checks the credentials and issues a signed token. Failures are
// reported uniformly so the response does not reveal which part was wrong.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.Validationf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("username", req.Username))
		return nil, apperrors.Validationf("invalid credentials")
	}

	expiresAt := time.Now().Add(s.expiry)
	token, err := s.generateToken(user, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Role:      user.Role,
	}, nil
}

func (s *Service) generateToken(user *users.User, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and verifies a bearer token
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Validationf("invalid token")
	}
	return claims, nil
}
