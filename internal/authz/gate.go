package authz

import (
	"context"
	"fmt"

	"github.com/menuforge/menuforge/internal/shared"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Deny rejects the operation outright.
	Deny Decision = iota
	// Allow permits the operation without further checks.
	Allow
	// AllowIfOwner permits the operation only after the caller verifies
	// ownership of the target record. Handlers MUST treat a failed
	// ownership check exactly like a missing resource; a distinct
	// "forbidden" would tell a non-owner the record exists.
	AllowIfOwner
)

// String renders the decision for logs and metric labels.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case AllowIfOwner:
		return "allow_if_owner"
	default:
		return "deny"
	}
}

// DecisionRecorder observes authorization outcomes, typically for metrics.
type DecisionRecorder interface {
	RecordDecision(decision string)
}

// Gate makes request-time authorization decisions against an immutable
// permission matrix.
type Gate struct {
	matrix   Matrix
	recorder DecisionRecorder
}

// NewGate constructs a Gate over the given matrix. The recorder may be nil.
func NewGate(matrix Matrix, recorder DecisionRecorder) *Gate {
	return &Gate{matrix: matrix, recorder: recorder}
}

// Authorize combines the principal's role with the matrix. A nil principal
// always denies.
func (g *Gate) Authorize(p *shared.Principal, action Action, resource Resource) Decision {
	d := g.decide(p, action, resource)
	if g.recorder != nil {
		g.recorder.RecordDecision(d.String())
	}
	return d
}

func (g *Gate) decide(p *shared.Principal, action Action, resource Resource) Decision {
	if p == nil {
		return Deny
	}
	role := Role(p.Role)
	if g.matrix.HasPermission(role, action, resource, false) {
		return Allow
	}
	if g.matrix.HasPermission(role, action, resource, true) {
		return AllowIfOwner
	}
	return Deny
}

// OwnershipCheck confirms the principal owns the record being mutated.
type OwnershipCheck func(ctx context.Context) (bool, error)

// SelfOwned is the ownership check for operations whose target is the
// principal itself, which is owned by definition.
func SelfOwned(context.Context) (bool, error) { return true, nil }

// AuthorizeOwned resolves an ownership-deferred decision in one place. When
// the matrix grants unconditionally the check is skipped entirely. When the
// grant is ownership-scoped and the check fails, the caller receives
// shared.ErrNotFound, indistinguishable from a record that does not exist.
func (g *Gate) AuthorizeOwned(ctx context.Context, p *shared.Principal, action Action, resource Resource, isOwner OwnershipCheck) error {
	switch g.Authorize(p, action, resource) {
	case Allow:
		return nil
	case AllowIfOwner:
		owned, err := isOwner(ctx)
		if err != nil {
			return fmt.Errorf("authz: ownership check: %w", err)
		}
		if !owned {
			return shared.ErrNotFound
		}
		return nil
	default:
		return shared.ErrPermissionDenied
	}
}

// RequireRole is an escape hatch for endpoints gated purely by role tier,
// bypassing the matrix. Used sparingly, only where resource-level ownership
// is meaningless (e.g. the platform dashboard).
func (g *Gate) RequireRole(p *shared.Principal, roles ...Role) error {
	if p == nil {
		return shared.ErrPermissionDenied
	}
	for _, r := range roles {
		if Role(p.Role) == r {
			return nil
		}
	}
	return shared.ErrPermissionDenied
}
