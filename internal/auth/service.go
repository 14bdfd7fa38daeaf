package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// ErrInvalidCredentials is returned for a bad username or password. Callers
// must not distinguish the two cases to the client.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates admin users against the admin_users table and
// issues HMAC-signed JWTs for the admin API.
type Service struct {
	db     *sql.DB
	secret string
	ttl    time.Duration
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates an auth service. ttl defaults to 12 hours.
func NewService(db *sql.DB, secret string, ttl time.Duration, logger *logging.Logger) *Service {
	if db == nil {
		panic("auth: db handle required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		db:     db,
		secret: secret,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies the password and returns a signed token plus its expiry.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if s.secret == "" {
		return "", time.Time{}, errors.New("auth: jwt secret not configured")
	}

	var (
		id           string
		passwordHash string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admin_users WHERE username = $1
	`, username).Scan(&id, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: lookup admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		s.logger.Warn("admin login rejected", "username", username)
		return "", time.Time{}, ErrInvalidCredentials
	}

	expires := s.now().Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}

	s.logger.Info("admin login succeeded", "username", username)
	return token, expires, nil
}

// HashPassword produces a bcrypt hash for seeding admin accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
