package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

// TOTPEnrollment is a pending second-factor setup.
type TOTPEnrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}

// BeginTOTP generates a new secret for p. Nothing is stored until
// ConfirmTOTP succeeds.
func (s *Service) BeginTOTP(p Principal) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "InfoDesa",
		AccountName: p.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}
	return &TOTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// ConfirmTOTP enables the second factor once code matches secret.
func (s *Service) ConfirmTOTP(ctx context.Context, p Principal, secret, code string) error {
	if !s.validateTOTP(secret, code) {
		return ErrInvalidTOTP
	}
	if err := s.users.SetTOTPSecret(ctx, p.UserID, secret); err != nil {
		return err
	}
	s.logger.Info("totp enabled", zap.String("user_id", p.UserID))
	return nil
}

// DisableTOTP turns the second factor off. The current code is required.
func (s *Service) DisableTOTP(ctx context.Context, p Principal, code string) error {
	u, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !u.TOTPEnabled() {
		return nil
	}
	if !s.validateTOTP(u.TOTPSecret, code) {
		return ErrInvalidTOTP
	}
	if err := s.users.SetTOTPSecret(ctx, p.UserID, ""); err != nil {
		return err
	}
	s.logger.Info("totp disabled", zap.String("user_id", p.UserID))
	return nil
}

func (s *Service) validateTOTP(secret, code string) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    6,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
