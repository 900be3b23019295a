package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
)

// User is an account with its profile role.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never serialized to JSON.
	Role         models.Role `json:"role"`
	TOTPSecret   string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	LastLogin    time.Time   `json:"last_login,omitempty"`
}

// TOTPEnabled reports whether sign-in requires a one-time code.
func (u *User) TOTPEnabled() bool {
	return u.TOTPSecret != ""
}

// UserRepository provides access to accounts in the profiles table.
type UserRepository interface {
	// Get returns a single user by ID.
	Get(ctx context.Context, id string) (*User, error)

	// GetByEmail returns a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]User, error)

	// Create inserts a new user. If user.ID is empty, a UUID is generated.
	Create(ctx context.Context, user *User) error

	// UpdateRole changes a user's profile role.
	UpdateRole(ctx context.Context, id string, role models.Role) error

	// SetTOTPSecret stores or clears the second-factor secret.
	SetTOTPSecret(ctx context.Context, id, secret string) error

	// TouchLogin records a successful sign-in.
	TouchLogin(ctx context.Context, id string, at time.Time) error

	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// Compile-time interface guard.
var _ UserRepository = (*SQLUserRepository)(nil)

// SQLUserRepository implements UserRepository.
type SQLUserRepository struct {
	db *store.Store
}

// NewUserRepository creates a UserRepository and runs the auth migrations.
func NewUserRepository(ctx context.Context, s *store.Store) (*SQLUserRepository, error) {
	if err := s.Migrate(ctx, OwnerAuth, authMigrations); err != nil {
		return nil, fmt.Errorf("auth migrations: %w", err)
	}
	return &SQLUserRepository{db: s}, nil
}

// userColumns is the shared SELECT column list for user queries.
const userColumns = `id, email, password_hash, role, totp_secret, created_at, last_login`

func (r *SQLUserRepository) Get(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", id, err)
	}
	return u, nil
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM profiles WHERE email = ?`, normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *SQLUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *SQLUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = normalizeEmail(user.Email)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, password_hash, role, totp_secret, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, string(user.Role), user.TOTPSecret, user.CreatedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	if role != models.RoleNone && !role.Valid() {
		return invalid("role", "Role tidak valid.")
	}
	return r.exec(ctx, "update role", `UPDATE profiles SET role = ? WHERE id = ?`, string(role), id)
}

func (r *SQLUserRepository) SetTOTPSecret(ctx context.Context, id, secret string) error {
	return r.exec(ctx, "set totp secret", `UPDATE profiles SET totp_secret = ? WHERE id = ?`, secret, id)
}

func (r *SQLUserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "touch login", `UPDATE profiles SET last_login = ? WHERE id = ?`, at.UTC(), id)
}

func (r *SQLUserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete user", `DELETE FROM profiles WHERE id = ?`, id)
}

func (r *SQLUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *SQLUserRepository) exec(ctx context.Context, op, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(sc scanner) (*User, error) {
	var u User
	var role string
	var lastLogin sql.NullTime

	if err := sc.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.TOTPSecret,
		&u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if lastLogin.Valid {
		u.LastLogin = lastLogin.Time
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
