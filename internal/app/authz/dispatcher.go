package authz

import (
	"context"
	"log/slog"

	"github.com/listly-app/shopping-list-api/internal/domain"
)

// RoleResolver resolves a role id to a role record.
type RoleResolver interface {
	ByID(ctx context.Context, id domain.RoleID) (domain.Role, error)
}

// ListAccessResolver resolves a subject's standing against a list.
type ListAccessResolver interface {
	ResolveListAccess(ctx context.Context, listID domain.ListID, subject domain.UserID) (ListAccess, error)
}

// DecisionRecorder receives one observation per decision. Optional.
type DecisionRecorder interface {
	RecordDecision(mode string, allowed bool)
}

// Dispatcher is the policy engine gating every protected operation.
//
// Every internal lookup failure (an unresolvable role, a transient
// repository error) collapses into a plain deny. The gate never reveals
// whether a referenced entity exists; a handler that needs to distinguish
// 404 from 403 must do its own existence check after the gate passes, using
// the subject's own view.
type Dispatcher struct {
	roles   RoleResolver
	access  ListAccessResolver
	logger  *slog.Logger
	metrics DecisionRecorder
}

// NewDispatcher constructs a Dispatcher. logger and metrics may be nil.
func NewDispatcher(roles RoleResolver, access ListAccessResolver, logger *slog.Logger, metrics DecisionRecorder) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{roles: roles, access: access, logger: logger, metrics: metrics}
}

// Authorize evaluates one mode against the claims and target. It is a
// single-shot decision: no state is carried between requests.
func (d *Dispatcher) Authorize(ctx context.Context, mode Mode, claims Claims, target Target) Decision {
	var dec Decision
	switch mode {
	case ModeCurrentUserOnly:
		dec = Decision{Allowed: true}
	case ModeAdminOnly:
		dec = d.adminOnly(ctx, claims)
	case ModeSelfOrAdmin:
		dec = d.selfOrAdmin(ctx, claims, target.UserID)
	case ModeResourceAccess:
		dec = d.listAccess(ctx, claims, target.ListID, false)
	case ModeOwnerOnly:
		dec = d.listAccess(ctx, claims, target.ListID, true)
	default:
		// Unknown mode denies. A misconfigured route must fail closed.
		d.logger.Error("authorize: unknown mode, denying", "mode", int(mode))
		dec = Decision{}
	}
	if d.metrics != nil {
		d.metrics.RecordDecision(mode.String(), dec.Allowed)
	}
	return dec
}

// isAdmin resolves the caller's role. The error (role missing or repository
// failure) is the caller's signal to deny.
func (d *Dispatcher) isAdmin(ctx context.Context, claims Claims) (bool, error) {
	role, err := d.roles.ByID(ctx, claims.RoleID)
	if err != nil {
		return false, err
	}
	return role.IsAdmin(), nil
}

func (d *Dispatcher) adminOnly(ctx context.Context, claims Claims) Decision {
	admin, err := d.isAdmin(ctx, claims)
	if err != nil || !admin {
		return Decision{}
	}
	return Decision{Allowed: true, Elevated: true}
}

func (d *Dispatcher) selfOrAdmin(ctx context.Context, claims Claims, target domain.UserID) Decision {
	admin, err := d.isAdmin(ctx, claims)
	if err != nil {
		// A subject whose role cannot be resolved is denied even when it
		// matches the target: the lookup failure stays invisible.
		return Decision{}
	}
	if admin {
		return Decision{Allowed: true, Elevated: true}
	}
	if claims.Subject == target {
		return Decision{Allowed: true}
	}
	return Decision{}
}

func (d *Dispatcher) listAccess(ctx context.Context, claims Claims, listID domain.ListID, ownerOnly bool) Decision {
	admin, err := d.isAdmin(ctx, claims)
	if err != nil {
		return Decision{}
	}
	if admin {
		return Decision{Allowed: true, Elevated: true}
	}
	acc, err := d.access.ResolveListAccess(ctx, listID, claims.Subject)
	if err != nil {
		return Decision{}
	}
	// A nonexistent list denies quietly; the gate is not the place for 404s.
	if !acc.Exists {
		return Decision{}
	}
	if acc.IsOwner {
		return Decision{Allowed: true}
	}
	if !ownerOnly && acc.IsGrantee {
		return Decision{Allowed: true}
	}
	return Decision{}
}
