package adminauth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleVendor    = "vendor"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("staff auth is unavailable")
)

// Service signs and validates the HS256 access tokens the back office runs
// on. Tokens are stateless; revocation happens by rotating the secret.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	now        func() time.Time
	configured bool
}

type Claims struct {
	UserID   int64
	Role     string
	Username string
}

type tokenClaims struct {
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

func NewService(jwtSecret string, accessTTL time.Duration) *Service {
	secret := strings.TrimSpace(jwtSecret)
	if accessTTL <= 0 {
		accessTTL = 8 * time.Hour
	}
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		now:        time.Now,
		configured: secret != "",
	}
}

func (s *Service) IsConfigured() bool {
	return s != nil && s.configured
}

func (s *Service) GenerateAccessToken(userID int64, role, username string) (string, time.Time, error) {
	if !s.IsConfigured() {
		return "", time.Time{}, ErrUnavailable
	}
	if userID <= 0 || strings.TrimSpace(role) == "" {
		return "", time.Time{}, fmt.Errorf("invalid access token payload")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.accessTTL)
	claims := tokenClaims{
		Role:     role,
		Username: strings.TrimSpace(username),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, expiresAt, nil
}

func (s *Service) ValidateAccessToken(raw string) (Claims, error) {
	if !s.IsConfigured() {
		return Claims{}, ErrUnavailable
	}
	if strings.TrimSpace(raw) == "" {
		return Claims{}, ErrUnauthorized
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(s.now))
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrUnauthorized
	}

	userID, parseErr := strconv.ParseInt(claims.Subject, 10, 64)
	if parseErr != nil || userID <= 0 {
		return Claims{}, ErrUnauthorized
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrUnauthorized
	}
	role := strings.TrimSpace(claims.Role)
	if role == "" {
		return Claims{}, ErrUnauthorized
	}

	return Claims{
		UserID:   userID,
		Role:     role,
		Username: strings.TrimSpace(claims.Username),
	}, nil
}
