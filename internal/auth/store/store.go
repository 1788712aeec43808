package store

import (
	"context"
	"errors"
	"time"

	"github.com/wardenhq/warden/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// anything document-shaped tomorrow) implement this; the service layer only
// ever talks to these interfaces.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back on error. Prefer this over Tx for multi-step account
	// transitions that must be atomic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repositories plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts is the per-tenant account repository. Every method is scoped by
// tenant; email uniqueness holds within a tenant, never across tenants.
type Accounts interface {
	// GetByEmail returns the account registered under email in tenant.
	GetByEmail(ctx context.Context, tenant domain.Tenant, email string) (domain.Account, error)

	// GetByID returns the account by its identity within tenant.
	GetByID(ctx context.Context, tenant domain.Tenant, id string) (domain.Account, error)

	// Create inserts a new account (id minted by the caller via ULID).
	// Duplicate email within the tenant fails with ErrAlreadyExists; the
	// uniqueness check is atomic with the insert, not check-then-insert.
	Create(ctx context.Context, a domain.Account) error

	// SetPendingOTP writes a live code and its expiry in one update. A new
	// code silently supersedes any previous unconsumed one.
	SetPendingOTP(ctx context.Context, tenant domain.Tenant, id, code string, expiry time.Time) error

	// ClearPendingOTP removes the pending code pair in one update,
	// optionally marking the account verified in the same write.
	ClearPendingOTP(ctx context.Context, tenant domain.Tenant, id string, markVerified bool) error

	// ListByTenant returns all accounts in the tenant, oldest first.
	ListByTenant(ctx context.Context, tenant domain.Tenant) ([]domain.Account, error)
}
