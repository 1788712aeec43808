package domain

import "errors"

// Tenant partitions accounts and signing secrets. A user and an admin with
// the same email are distinct accounts.
type Tenant string

const (
	TenantUser  Tenant = "user"
	TenantAdmin Tenant = "admin"
)

// ErrUnknownTenant reports a tenant path segment outside {users, admin}.
var ErrUnknownTenant = errors.New("domain: unknown tenant")

// ParseTenant maps an API path segment to a tenant kind. The route segments
// are plural for users ("/api/v1/users/...") and singular-collective for
// admin ("/api/v1/admin/..."), as in the original API surface.
func ParseTenant(segment string) (Tenant, error) {
	switch segment {
	case "users":
		return TenantUser, nil
	case "admin":
		return TenantAdmin, nil
	default:
		return "", ErrUnknownTenant
	}
}

func (t Tenant) String() string { return string(t) }
