package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/testutil"
	"github.com/ngipak/infodesa/pkg/models"
)

func newService(t *testing.T) (*auth.Service, *services.SQLUserRepository) {
	t.Helper()
	users, err := services.NewUserRepository(context.Background(), testutil.NewStore(t))
	require.NoError(t, err)
	svc, err := auth.NewService(users, auth.Options{Secret: "test-secret", TTL: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	return svc, users
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "admin@ngipak.desa.id", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.NotEqual(t, "rahasia123", first.PasswordHash)

	second, err := svc.Register(ctx, "warga@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, second.Role)

	_, err = svc.Register(ctx, "Warga@Example.com", "rahasia123")
	assert.ErrorIs(t, err, services.ErrAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bukan-email", "rahasia123")
	assert.ErrorIs(t, err, services.ErrInvalid)

	_, err = svc.Register(ctx, "a@b.id", "pendek")
	assert.ErrorIs(t, err, services.ErrInvalid)
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "admin@ngipak.desa.id", "rahasia123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin@ngipak.desa.id", "salah", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@ngipak.desa.id", "rahasia123", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "ADMIN@ngipak.desa.id", "rahasia123", "")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.False(t, sess.User.LastLogin.IsZero())

	claims, err := svc.ParseToken(sess.Token)
	require.NoError(t, err)
	p := claims.Principal()
	assert.Equal(t, sess.User.ID, p.UserID)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.True(t, p.Can(models.RoleEditor))
}

func TestParseToken_RejectsExpiredForeignAndRevoked(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "admin@ngipak.desa.id", "rahasia123")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "admin@ngipak.desa.id", "rahasia123", "")
	require.NoError(t, err)

	other, _ := newService(t)
	_, err = other.ParseToken(sess.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "token signed with another secret")

	clock := testutil.NewClock(time.Now())
	clock.Advance(2 * time.Hour)
	svc.SetClock(clock.Now)
	_, err = svc.ParseToken(sess.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "expired token")
	svc.SetClock(time.Now)

	claims, err := svc.ParseToken(sess.Token)
	require.NoError(t, err)
	svc.Revoke(claims)
	_, err = svc.ParseToken(sess.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "revoked token")
}

func TestTOTPFlow(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "admin@ngipak.desa.id", "rahasia123")
	require.NoError(t, err)
	p := auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}

	enr, err := svc.BeginTOTP(p)
	require.NoError(t, err)
	assert.Contains(t, enr.URL, "otpauth://totp/")

	assert.ErrorIs(t, svc.ConfirmTOTP(ctx, p, enr.Secret, "000000x"), auth.ErrInvalidTOTP)

	code, err := totp.GenerateCode(enr.Secret, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmTOTP(ctx, p, enr.Secret, code))

	stored, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.TOTPEnabled())

	_, err = svc.Login(ctx, u.Email, "rahasia123", "")
	assert.ErrorIs(t, err, auth.ErrTOTPRequired)
	_, err = svc.Login(ctx, u.Email, "rahasia123", "123")
	assert.ErrorIs(t, err, auth.ErrInvalidTOTP)

	code, err = totp.GenerateCode(enr.Secret, time.Now().UTC())
	require.NoError(t, err)
	_, err = svc.Login(ctx, u.Email, "rahasia123", code)
	require.NoError(t, err)

	require.NoError(t, svc.DisableTOTP(ctx, p, code))
	stored, err = users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.TOTPEnabled())
}

func TestMiddleware(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "admin@ngipak.desa.id", "rahasia123")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "admin@ngipak.desa.id", "rahasia123", "")
	require.NoError(t, err)

	var got *auth.Principal
	h := svc.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		if p, ok := auth.FromContext(r.Context()); ok {
			got = &p
		}
	}))

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"no header", "", false},
		{"garbage", "Bearer nope", false},
		{"basic auth", "Basic abc", false},
		{"valid", "Bearer " + sess.Token, true},
		{"lowercase scheme", "bearer " + sess.Token, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got != nil)
			if got != nil {
				assert.Equal(t, models.RoleAdmin, got.Role)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Email atau password salah.", auth.Message(auth.ErrInvalidCredentials))
	assert.Equal(t, "Kode autentikator wajib diisi.", auth.Message(auth.ErrTOTPRequired))
}
