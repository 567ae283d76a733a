package authz

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// Account is the stored identity the resolver shapes into a Principal.
type Account struct {
	ID       int64
	Username string
	Role     string
	IsActive bool
}

// AccountSource looks up account rows by ID.
type AccountSource interface {
	FindAccount(ctx context.Context, id int64) (Account, error)
}

// PrincipalResolver turns the validated session on the request context into a
// Principal. It performs no credential checks itself; the session layer has
// already done that. It fails closed: no session, no user, or a vanished or
// deactivated account all resolve to ErrUnauthenticated.
type PrincipalResolver struct {
	accounts AccountSource
}

// NewPrincipalResolver constructs a PrincipalResolver.
func NewPrincipalResolver(accounts AccountSource) *PrincipalResolver {
	return &PrincipalResolver{accounts: accounts}
}

// Resolve produces the Principal for the current request.
func (r *PrincipalResolver) Resolve(ctx context.Context) (Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return Principal{}, shared.ErrUnauthenticated
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return Principal{}, shared.ErrUnauthenticated
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Principal{}, shared.ErrUnauthenticated
	}
	account, err := r.accounts.FindAccount(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Principal{}, shared.ErrUnauthenticated
		}
		return Principal{}, err
	}
	if !account.IsActive {
		return Principal{}, shared.ErrUnauthenticated
	}
	return Principal{
		ID:       account.ID,
		Username: account.Username,
		Role:     ParseRole(account.Role),
	}, nil
}
