package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/pkg/models"
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrInvalidTOTP        = errors.New("invalid totp code")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

// Message returns the user-facing text of an authentication error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Email atau password salah."
	case errors.Is(err, ErrTOTPRequired):
		return "Kode autentikator wajib diisi."
	case errors.Is(err, ErrInvalidTOTP):
		return "Kode autentikator tidak valid."
	case errors.Is(err, ErrInvalidToken):
		return "Sesi tidak valid atau sudah berakhir. Silakan login kembali."
	}
	return "Terjadi kesalahan saat autentikasi."
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Options configures a Service.
type Options struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Service authenticates users against the profiles table.
type Service struct {
	users   services.UserRepository
	secret  []byte
	ttl     time.Duration
	issuer  string
	now     func() time.Time
	revoked denylist
	logger  *zap.Logger
}

// NewService creates a Service. An empty secret is replaced by a random
// one, which invalidates sessions on every restart.
func NewService(users services.UserRepository, opts Options, logger *zap.Logger) (*Service, error) {
	secret := []byte(opts.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn("auth.jwt_secret is not set; using a random secret, sessions end on restart")
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Issuer == "" {
		opts.Issuer = "infodesa"
	}
	return &Service{
		users:  users,
		secret: secret,
		ttl:    opts.TTL,
		issuer: opts.Issuer,
		now:    time.Now,
		logger: logger,
	}, nil
}

// SetClock overrides the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *services.User `json:"user"`
}

// Register creates a citizen account. The very first account becomes the
// admin so a fresh install can be managed.
func (s *Service) Register(ctx context.Context, email, password string) (*services.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &services.ValidationError{Field: "email", Message: "Email tidak valid."}
	}
	if len(password) < MinPasswordLength {
		return nil, &services.ValidationError{Field: "password",
			Message: fmt.Sprintf("Password minimal %d karakter.", MinPasswordLength)}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	u := &services.User{Email: email, PasswordHash: hash}
	if n == 0 {
		u.Role = models.RoleAdmin
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login checks credentials and, for accounts with TOTP enabled, the
// one-time code, then issues a session token.
func (s *Service) Login(ctx context.Context, email, password, totpCode string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// Keep timing similar to a wrong password.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if u.TOTPEnabled() {
		if strings.TrimSpace(totpCode) == "" {
			return nil, ErrTOTPRequired
		}
		if !s.validateTOTP(u.TOTPSecret, totpCode) {
			return nil, ErrInvalidTOTP
		}
	}

	token, exp, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to record login", zap.String("user_id", u.ID), zap.Error(err))
	}
	u.LastLogin = now
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// User returns the current account of a principal, so role changes apply
// without a new token.
func (s *Service) User(ctx context.Context, p Principal) (*services.User, error) {
	return s.users.Get(ctx, p.UserID)
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the account does not exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("infodesa-dummy-password"), bcrypt.MinCost)
