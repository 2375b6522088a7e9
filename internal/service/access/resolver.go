package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/metrics"
)

type ResolverImpl struct {
	teams team.TeamRepository
	cache access.ScopeCache
}

// NewResolver builds the manager scope resolver. cache may be nil.
func NewResolver(teams team.TeamRepository, cache access.ScopeCache) access.Resolver {
	return &ResolverImpl{teams: teams, cache: cache}
}

// ResolveManagerScope implements access.Resolver. The scope covers every team the
// manager manages or belongs to: their members, their declared managers and the
// manager itself.
func (r *ResolverImpl) ResolveManagerScope(ctx context.Context, managerID string) (map[string]struct{}, error) {
	var (
		gen       int64
		cacheable bool
	)
	if r.cache != nil {
		ids, observed, ok, err := r.cache.Get(ctx, managerID)
		switch {
		case err != nil:
			slog.Warn("scope cache lookup failed", "manager_id", managerID, "error", err)
			metrics.ObserveScopeCache("error")
		case ok:
			metrics.ObserveScopeCache("hit")
			return toSet(managerID, ids), nil
		default:
			metrics.ObserveScopeCache("miss")
			gen, cacheable = observed, true
		}
	}

	ids, err := r.teams.ScopeUserIDs(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve manager scope: %w", access.ErrStorageUnavailable, err)
	}

	if cacheable {
		if err := r.cache.Set(ctx, gen, managerID, ids); err != nil {
			slog.Warn("scope cache store failed", "manager_id", managerID, "error", err)
		}
	}
	return toSet(managerID, ids), nil
}

// ResolveStrictManagerScope implements access.Resolver. Only teams declared as
// managed by managerID count.
func (r *ResolverImpl) ResolveStrictManagerScope(ctx context.Context, managerID string) (map[string]struct{}, error) {
	ids, err := r.teams.StrictScopeUserIDs(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve strict manager scope: %w", access.ErrStorageUnavailable, err)
	}
	return toSet(managerID, ids), nil
}

// InvalidateScopes implements access.Resolver.
func (r *ResolverImpl) InvalidateScopes(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		slog.Warn("scope cache invalidation failed", "error", err)
	}
}

func toSet(managerID string, ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids)+1)
	set[managerID] = struct{}{}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
