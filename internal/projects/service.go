package projects

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

// Store is the persistence contract the service works against.
// QueueTeam must reject a team that is already queued on any project, and
// Assign must atomically pick the earliest-queued team, clear the queue and
// mark the winning team's members assigned.
type Store interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context, status Status) ([]*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	QueueTeam(ctx context.Context, projectID, teamID uuid.UUID) error
	DequeueTeam(ctx context.Context, projectID, teamID uuid.UUID) error
	QueuedTeamIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	Assign(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
}

// Service provides project and assignment business logic
type Service struct {
	store Store
}

// NewService creates a new project service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateProject creates an open project authored by the teacher
func (s *Service) CreateProject(ctx context.Context, user *users.User, name, description string) (*Project, error) {
	if !user.IsTeacher() {
		return nil, users.ErrMustBeTeacher
	}

	project := &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      StatusOpen,
		Author:      user.ID,
	}

	if err := s.store.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// DeleteProject removes the project unless a team has been assigned to it
func (s *Service) DeleteProject(ctx context.Context, user *users.User, project *Project) error {
	if !user.IsTeacher() {
		return users.ErrMustBeTeacher
	}
	if project.AssignedTeam != nil {
		return ErrProjectHasAssignedTeam
	}

	return s.store.Delete(ctx, project.ID)
}

// TeamJoinProject queues the student's team on the project. A team may be
// queued on at most one project at a time across the whole system.
func (s *Service) TeamJoinProject(ctx context.Context, user *users.User, project *Project) error {
	if !user.IsStudent() {
		return users.ErrMustBeStudent
	}
	if user.TeamID == nil {
		return ErrNoTeam
	}

	return s.store.QueueTeam(ctx, project.ID, *user.TeamID)
}

// TeamLeaveProject removes the student's team from the project queue
func (s *Service) TeamLeaveProject(ctx context.Context, user *users.User, project *Project) error {
	if !user.IsStudent() {
		return users.ErrMustBeStudent
	}
	if user.TeamID == nil {
		return ErrNoTeam
	}

	return s.store.DequeueTeam(ctx, project.ID, *user.TeamID)
}

// AssignTeamToProject binds the earliest-queued team to the project, evicts
// every other queued team and marks the members of the winning team assigned.
// This is an administrative batch action with no role guard.
func (s *Service) AssignTeamToProject(ctx context.Context, project *Project) error {
	teamID, err := s.store.Assign(ctx, project.ID)
	if err != nil {
		return err
	}

	project.AssignedTeam = &teamID
	project.Status = StatusAssigned
	return nil
}

// GetProjectByID retrieves a project by ID
func (s *Service) GetProjectByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.store.GetByID(ctx, id)
}

// ListProjects returns projects, optionally filtered by status
func (s *Service) ListProjects(ctx context.Context, status Status) ([]*Project, error) {
	return s.store.List(ctx, status)
}

// QueuedTeams returns the project queue in queue order
func (s *Service) QueuedTeams(ctx context.Context, project *Project) ([]uuid.UUID, error) {
	return s.store.QueuedTeamIDs(ctx, project.ID)
}
