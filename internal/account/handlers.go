package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/pkg/models"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email" example:"warga@example.com"`
	Password string `json:"password" example:"rahasia123"`
	TOTPCode string `json:"totp_code,omitempty" example:"123456"`
}

// ConfirmTOTPRequest activates a second factor.
type ConfirmTOTPRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code" example:"123456"`
}

// CodeRequest carries a one-time code.
type CodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// RoleRequest assigns a profile role. An empty role revokes staff access.
type RoleRequest struct {
	Role models.Role `json:"role" example:"editor"`
}

// handleRegister creates a citizen account.
//
//	@Summary		Register
//	@Description	Creates an account. The first account of a fresh install becomes admin.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Email and password"
//	@Success		201		{object}	services.User
//	@Failure		409		{object}	server.Problem
//	@Failure		422		{object}	server.Problem
//	@Router			/auth/register [post]
func (p *Plugin) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := p.auth.Register(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrAlreadyExists) {
		server.Conflict(w, "Email sudah terdaftar.", r.URL.Path)
		return
	}
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// handleLogin signs in and returns a session token.
//
//	@Summary		Login
//	@Description	Accounts with TOTP enabled must send totp_code.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Credentials"
//	@Success		200		{object}	auth.Session
//	@Failure		401		{object}	server.Problem
//	@Failure		429		{object}	server.Problem
//	@Router			/auth/login [post]
func (p *Plugin) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := p.auth.Login(r.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		p.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleMe returns the signed-in account with its current role.
//
//	@Summary	Current user
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	services.User
//	@Failure	401	{object}	server.Problem
//	@Router		/auth/me [get]
func (p *Plugin) handleMe(w http.ResponseWriter, r *http.Request) {
	pr, _ := auth.FromContext(r.Context())
	u, err := p.auth.User(r.Context(), pr)
	if errors.Is(err, services.ErrNotFound) {
		server.Unauthorized(w, "Akun tidak ditemukan. Silakan login kembali.", r.URL.Path)
		return
	}
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleLogout revokes the session token of the request.
//
//	@Summary	Logout
//	@Tags		auth
//	@Security	BearerAuth
//	@Success	204
//	@Router		/auth/logout [post]
func (p *Plugin) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, err := p.auth.ParseToken(auth.BearerToken(r))
	if err == nil {
		p.auth.Revoke(claims)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTOTPSetup generates a secret for an authenticator app. Nothing is
// stored until the secret is confirmed.
//
//	@Summary	Begin TOTP enrollment
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	auth.TOTPEnrollment
//	@Router		/auth/totp/setup [post]
func (p *Plugin) handleTOTPSetup(w http.ResponseWriter, r *http.Request) {
	pr, _ := auth.FromContext(r.Context())
	enr, err := p.auth.BeginTOTP(pr)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, enr)
}

// handleTOTPConfirm enables the second factor after a valid code.
//
//	@Summary	Confirm TOTP enrollment
//	@Tags		auth
//	@Accept		json
//	@Security	BearerAuth
//	@Param		request	body	ConfirmTOTPRequest	true	"Secret and code"
//	@Success	204
//	@Failure	401	{object}	server.Problem
//	@Router		/auth/totp/confirm [post]
func (p *Plugin) handleTOTPConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmTOTPRequest
	if !decode(w, r, &req) {
		return
	}
	pr, _ := auth.FromContext(r.Context())
	if err := p.auth.ConfirmTOTP(r.Context(), pr, req.Secret, req.Code); err != nil {
		p.writeAuthError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTOTPDisable turns the second factor off.
//
//	@Summary	Disable TOTP
//	@Tags		auth
//	@Accept		json
//	@Security	BearerAuth
//	@Param		request	body	CodeRequest	true	"Current code"
//	@Success	204
//	@Failure	401	{object}	server.Problem
//	@Router		/auth/totp/disable [post]
func (p *Plugin) handleTOTPDisable(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if !decode(w, r, &req) {
		return
	}
	pr, _ := auth.FromContext(r.Context())
	if err := p.auth.DisableTOTP(r.Context(), pr, req.Code); err != nil {
		p.writeAuthError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListUsers lists all accounts.
//
//	@Summary	List users
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	services.User
//	@Failure	403	{object}	server.Problem
//	@Router		/auth/users [get]
func (p *Plugin) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := p.users.List(r.Context())
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleSetRole assigns or revokes a staff role. Admins cannot change
// their own role so an install never loses its last admin by accident.
//
//	@Summary	Set user role
//	@Tags		auth
//	@Accept		json
//	@Security	BearerAuth
//	@Param		id		path	string		true	"User ID"
//	@Param		request	body	RoleRequest	true	"Role"
//	@Success	204
//	@Failure	400	{object}	server.Problem
//	@Failure	404	{object}	server.Problem
//	@Router		/auth/users/{id}/role [patch]
func (p *Plugin) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if pr, _ := auth.FromContext(r.Context()); pr.UserID == id {
		server.BadRequest(w, "Tidak dapat mengubah peran akun sendiri.", r.URL.Path)
		return
	}
	if err := p.users.UpdateRole(r.Context(), id, req.Role); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	p.logger.Info("user role changed", zap.String("user_id", id), zap.String("role", string(req.Role)))
	w.WriteHeader(http.StatusNoContent)
}

func (p *Plugin) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTOTPRequired),
		errors.Is(err, auth.ErrInvalidTOTP),
		errors.Is(err, auth.ErrInvalidToken):
		server.Unauthorized(w, auth.Message(err), r.URL.Path)
	default:
		server.WriteError(w, r, p.logger, err)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		server.BadRequest(w, "Format permintaan tidak valid.", r.URL.Path)
		return false
	}
	return true
}
