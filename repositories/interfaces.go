package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user account data operations
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields ErrDuplicate.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProductRepository handles catalog data operations
type ProductRepository interface {
	// Create inserts a new product variant
	Create(ctx context.Context, product *models.Product) error

	// GetBySlug retrieves a product by its unique slug
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)

	// Find returns products matching every non-empty field of filter,
	// ordered by creation time
	Find(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)

	// ListInStock returns products with stock_qty > 0, optionally by category
	ListInStock(ctx context.Context, category string) ([]*models.Product, error)
}

// SessionRepository is the session store behind issued tokens
type SessionRepository interface {
	// Create assigns an ID and inserts the session
	Create(ctx context.Context, session *models.Session) (*models.Session, error)

	// FindByTokenID retrieves a session by its token id
	FindByTokenID(ctx context.Context, tokenID uuid.UUID) (*models.Session, error)

	// Revoke marks a session revoked; repeating it is a no-op
	Revoke(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// ListActiveByUser returns unrevoked sessions of a user that expire after now
	ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Session, error)

	// RevokeAllForUser revokes every unrevoked session of a user and returns
	// the rows it changed
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
}

// AuthEventRepository handles authentication audit trail operations
type AuthEventRepository interface {
	// Insert inserts a new auth event
	Insert(ctx context.Context, event *models.AuthEvent) error

	// GetByUserID retrieves events for a user with pagination, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuthEvent, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users      UserRepository
	Products   ProductRepository
	Sessions   SessionRepository
	AuthEvents AuthEventRepository
}
