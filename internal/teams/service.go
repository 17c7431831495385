package teams

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

// Store is the persistence contract the service works against.
// AddMember and RemoveMember must serialize concurrent mutations of one team
// and apply the slot rules of Team.AddMember / Team.RemoveMember. Create and
// AddMember must refuse to attach a user who already has a team, even when the
// caller's copy of the user is stale; RemoveMember must refuse to dissolve a
// team that is assigned to a project.
type Store interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
}

// Service provides team membership business logic
type Service struct {
	store Store
}

// NewService creates a new team service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateTeam creates a team owned by the student. The creator takes the
// first teammate slot and is attached to the new team.
func (s *Service) CreateTeam(ctx context.Context, user *users.User, name string) (*Team, error) {
	if !user.IsStudent() {
		return nil, users.ErrMustBeStudent
	}
	if user.TeamID != nil {
		return nil, ErrUserAlreadyInTeam
	}

	team := &Team{
		ID:            uuid.New(),
		Name:          name,
		FirstTeammate: user.ID,
	}

	if err := s.store.Create(ctx, team); err != nil {
		return nil, err
	}

	user.TeamID = &team.ID
	return team, nil
}

// JoinTeam puts the student into the team's free second slot
func (s *Service) JoinTeam(ctx context.Context, user *users.User, team *Team) error {
	if !user.IsStudent() {
		return users.ErrMustBeStudent
	}
	if user.TeamID != nil {
		return ErrUserAlreadyInTeam
	}
	if team.IsFull() {
		return ErrTeamIsFull
	}

	// The store re-checks the slot under a row lock, so two concurrent joins
	// cannot both take it
	if err := s.store.AddMember(ctx, team.ID, user.ID); err != nil {
		return err
	}

	userID := user.ID
	team.SecondTeammate = &userID
	user.TeamID = &team.ID
	return nil
}

// LeaveTeam removes the student from their team. The sole member leaving
// dissolves the team; when the first of two leaves, the second is promoted.
func (s *Service) LeaveTeam(ctx context.Context, user *users.User) error {
	if !user.IsStudent() {
		return users.ErrMustBeStudent
	}
	if user.TeamID == nil {
		return ErrUserNotInTeam
	}

	if err := s.store.RemoveMember(ctx, *user.TeamID, user.ID); err != nil {
		return err
	}

	user.TeamID = nil
	return nil
}

// GetTeamByID retrieves a team by ID
func (s *Service) GetTeamByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	return s.store.GetByID(ctx, id)
}

// ListTeams returns all teams
func (s *Service) ListTeams(ctx context.Context) ([]*Team, error) {
	return s.store.List(ctx)
}
