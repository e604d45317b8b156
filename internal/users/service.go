package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/menuforge/menuforge/internal/authz"
	"github.com/menuforge/menuforge/internal/cascade"
	"github.com/menuforge/menuforge/internal/platform/cache"
	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/internal/shared"
)

const statsCacheKey = "admin:stats"

// ProfileDirectory is the slice of the profiles repository the admin surface
// needs.
type ProfileDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error)
	List(ctx context.Context, page, perPage int) ([]profiles.Profile, error)
	Count(ctx context.Context) (int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (*profiles.Profile, error)
}

// AccountPurger runs the deletion cascade synchronously.
type AccountPurger interface {
	PurgeAccount(ctx context.Context, profileID uuid.UUID) (*cascade.Report, error)
}

// PurgeEnqueuer hands the cascade to the background worker instead.
type PurgeEnqueuer interface {
	EnqueueAccountPurge(ctx context.Context, profileID uuid.UUID) error
}

// StatsSource computes the dashboard counters.
type StatsSource interface {
	CollectStats(ctx context.Context) (*Stats, error)
}

// Service implements the operator actions. Role changes and deletions refuse
// to target the acting operator's own account.
type Service struct {
	logger   *slog.Logger
	profiles ProfileDirectory
	stats    StatsSource
	purger   AccountPurger
	enqueuer PurgeEnqueuer
	audit    *shared.AuditLogger
	cache    *cache.JSONCache
	group    singleflight.Group
}

// NewService builds Service instance. enqueuer, audit, and cache may be nil;
// without an enqueuer every deletion runs inline.
func NewService(logger *slog.Logger, directory ProfileDirectory, stats StatsSource, purger AccountPurger, enqueuer PurgeEnqueuer, audit *shared.AuditLogger, statsCache *cache.JSONCache) *Service {
	return &Service{
		logger:   logger,
		profiles: directory,
		stats:    stats,
		purger:   purger,
		enqueuer: enqueuer,
		audit:    audit,
		cache:    statsCache,
	}
}

// List returns a page of accounts plus the total count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]profiles.Profile, int, error) {
	list, err := s.profiles.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.profiles.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ChangeRole moves the target account to a new permission tier.
func (s *Service) ChangeRole(ctx context.Context, actor *shared.Principal, id uuid.UUID, role string) (*profiles.Profile, error) {
	if !authz.Role(role).Valid() {
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidRole, role)
	}

	target, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardSelf(actor, target); err != nil {
		return nil, err
	}
	if err := s.guardTier(actor, target, authz.Role(role)); err != nil {
		return nil, err
	}

	previous := target.Role
	updated, err := s.profiles.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "user.role_change", id, map[string]any{"from": previous, "to": role})
	s.invalidateStats(ctx)
	return updated, nil
}

// Delete removes the target account through the cascade. With async set and
// an enqueuer configured, the cascade runs on the background worker and the
// returned report is nil.
func (s *Service) Delete(ctx context.Context, actor *shared.Principal, id uuid.UUID, async bool) (*cascade.Report, error) {
	target, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardSelf(actor, target); err != nil {
		return nil, err
	}
	if err := s.guardTier(actor, target, ""); err != nil {
		return nil, err
	}

	if async && s.enqueuer != nil {
		if err := s.enqueuer.EnqueueAccountPurge(ctx, id); err != nil {
			return nil, fmt.Errorf("users: enqueue purge: %w", err)
		}
		s.recordAudit(ctx, actor, "user.delete_enqueued", id, map[string]any{"email": target.Email})
		return nil, nil
	}

	report, err := s.purger.PurgeAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "user.delete", id, map[string]any{
		"email":              target.Email,
		"businesses_purged":  report.BusinessesPurged,
		"media_deleted":      report.MediaDeleted,
		"identity_deleted":   report.IdentityDeleted,
		"soft_failure_count": len(report.SoftFailures),
	})
	s.invalidateStats(ctx)
	return report, nil
}

// Stats returns the dashboard counters, cached with a short TTL. Concurrent
// cache misses collapse into one database pass.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var cached Stats
	if ok, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	v, err, _ := s.group.Do(statsCacheKey, func() (any, error) {
		stats, err := s.stats.CollectStats(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, statsCacheKey, stats); err != nil {
			s.logger.Warn("cache dashboard stats", slog.Any("error", err))
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Stats), nil
}

// guardSelf rejects operations whose target is the acting operator. Both the
// profile id and the linked identity are compared; two profiles sharing one
// identity record are the same person.
func (s *Service) guardSelf(actor *shared.Principal, target *profiles.Profile) error {
	if actor == nil {
		return shared.ErrPermissionDenied
	}
	if target.ID == actor.ProfileID {
		return shared.ErrOwnAccount
	}
	if target.IdentityID != nil && *target.IdentityID == actor.IdentityID.String() {
		return shared.ErrOwnAccount
	}
	return nil
}

// guardTier restricts administrative-tier management to super_admin. An
// admin may neither grant an elevated role nor touch an account that
// already holds one; only super_admin manages other admins.
func (s *Service) guardTier(actor *shared.Principal, target *profiles.Profile, requested authz.Role) error {
	if authz.Role(actor.Role) == authz.RoleSuperAdmin {
		return nil
	}
	if authz.Role(target.Role).Elevated() || requested.Elevated() {
		return shared.ErrPermissionDenied
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor *shared.Principal, action string, entityID uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		Action:   action,
		Entity:   "profile",
		EntityID: entityID.String(),
		Meta:     meta,
	}
	if actor != nil {
		entry.ActorID = actor.ProfileID.String()
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("write audit log", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		s.logger.Warn("invalidate stats cache", slog.Any("error", err))
	}
}
