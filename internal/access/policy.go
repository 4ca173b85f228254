package access

import (
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// ProjectLookup resolves which projects a PM manages.
type ProjectLookup interface {
	ManagedProjectIDs(pmID int64) ([]int64, error)
}

// UserLookup resolves the functional-manager reference of an employee.
type UserLookup interface {
	FunctionalManagerID(employeeID int64) (*int64, error)
}

// Policy decides whether an actor may see or act on a timesheet. It works on
// primitives (owner id, assigned fm id, line project ids) so the domain
// packages stay free of each other.
type Policy struct {
	projects ProjectLookup
	users    UserLookup
	logger   *slog.Logger
}

func NewPolicy(projects ProjectLookup, users UserLookup, logger *slog.Logger) *Policy {
	return &Policy{
		projects: projects,
		users:    users,
		logger:   logger,
	}
}

// CanView reports whether the actor may read the timesheet. Violations come
// back as an AccessDenied error, never as silent filtering.
func (p *Policy) CanView(actor auth.Actor, ownerID int64, fmID *int64, lineProjectIDs []int64) error {
	switch {
	case actor.Role == auth.RoleAdmin:
		return nil
	case actor.ID == ownerID:
		return nil
	case actor.Role == auth.RolePM:
		manages, err := p.ManagesAnyProject(actor.ID, lineProjectIDs)
		if err != nil {
			return err
		}
		if manages {
			return nil
		}
	case actor.Role == auth.RoleFM:
		isFM, err := p.IsFunctionalManagerFor(actor.ID, ownerID, fmID)
		if err != nil {
			return err
		}
		if isFM {
			return nil
		}
	}

	p.logger.Warn("view denied",
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"owner_id", ownerID)
	return internal.ErrAccessDenied
}

// ManagesAnyProject reports whether the PM manages at least one of the
// projects referenced by the timesheet's lines.
func (p *Policy) ManagesAnyProject(pmID int64, lineProjectIDs []int64) (bool, error) {
	managed, err := p.projects.ManagedProjectIDs(pmID)
	if err != nil {
		return false, err
	}

	managedSet := make(map[int64]bool, len(managed))
	for _, id := range managed {
		managedSet[id] = true
	}
	for _, id := range lineProjectIDs {
		if managedSet[id] {
			return true, nil
		}
	}
	return false, nil
}

// IsFunctionalManagerFor reports whether the actor is the timesheet's
// assigned FM or the owner's functional manager.
func (p *Policy) IsFunctionalManagerFor(actorID, ownerID int64, fmID *int64) (bool, error) {
	if fmID != nil && *fmID == actorID {
		return true, nil
	}

	ref, err := p.users.FunctionalManagerID(ownerID)
	if err != nil {
		return false, err
	}
	return ref != nil && *ref == actorID, nil
}
