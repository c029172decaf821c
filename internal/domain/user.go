package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID string
	Role   string
}

// CanManage reports whether the identity may manage a resource owned by
// ownerID: owners and admins qualify. All organizer-or-admin checks go
// through here rather than scattered equality checks.
func (id Identity) CanManage(ownerID string) bool {
	return id.Role == RoleAdmin || id.UserID == ownerID
}

// UserFilter holds the query filters for listing users.
type UserFilter struct {
	Role     string
	IsActive *bool
}

// PasswordHasher handles hashing and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*User, string, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter, params PaginationParams) ([]*User, int, error)
	UpdateRole(ctx context.Context, id, role string) (*User, error)
	SetActive(ctx context.Context, id string, active bool) (*User, error)
	CountActive(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*User, error)
}

// UserService defines signup, login, and profile lookup.
type UserService interface {
	SignUp(ctx context.Context, email, username, firstName, lastName, password string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}
