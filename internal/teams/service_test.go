package teams

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Ultrahd-dev/project-manager-app/backend/internal/users"
)

// fakeStore is an in-memory Store. Membership mutations are applied through
// the same entity methods the SQL repository uses under its row locks.
// attached mirrors the users.team_id column, so the store rejects attaching a
// user who already has a team even when the caller's user copy is stale, like
// the conditional UPDATE in the SQL repository does.
type fakeStore struct {
	teams    map[uuid.UUID]*Team
	attached map[uuid.UUID]uuid.UUID
	assigned map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:    make(map[uuid.UUID]*Team),
		attached: make(map[uuid.UUID]uuid.UUID),
		assigned: make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) Create(_ context.Context, team *Team) error {
	for _, t := range s.teams {
		if t.Name == team.Name {
			return ErrTeamNameExists
		}
	}
	if _, ok := s.attached[team.FirstTeammate]; ok {
		return ErrUserAlreadyInTeam
	}
	copied := *team
	s.teams[team.ID] = &copied
	s.attached[team.FirstTeammate] = team.ID
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*Team, error) {
	team, ok := s.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (s *fakeStore) List(_ context.Context) ([]*Team, error) {
	var result []*Team
	for _, team := range s.teams {
		copied := *team
		result = append(result, &copied)
	}
	return result, nil
}

func (s *fakeStore) AddMember(_ context.Context, teamID, userID uuid.UUID) error {
	team, ok := s.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}
	if _, ok := s.attached[userID]; ok {
		return ErrUserAlreadyInTeam
	}
	if err := team.AddMember(userID); err != nil {
		return err
	}
	s.attached[userID] = teamID
	return nil
}

func (s *fakeStore) RemoveMember(_ context.Context, teamID, userID uuid.UUID) error {
	team, ok := s.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}

	copied := *team
	dissolved, err := copied.RemoveMember(userID)
	if err != nil {
		return err
	}
	if dissolved {
		if s.assigned[teamID] {
			return ErrTeamAssigned
		}
		delete(s.teams, teamID)
	} else {
		*team = copied
	}
	delete(s.attached, userID)
	return nil
}

var nextStudentNo int64 = 1000

func newStudent(username string) *users.User {
	nextStudentNo++
	studentNo := nextStudentNo
	return &users.User{
		ID:        uuid.New(),
		Username:  username,
		Role:      users.RoleStudent,
		StudentNo: &studentNo,
		Status:    users.StudentStatusFree,
	}
}

func newTeacher(username string) *users.User {
	return &users.User{
		ID:       uuid.New(),
		Username: username,
		Role:     users.RoleTeacher,
	}
}

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)
	student := newStudent("test_username")

	team, err := service.CreateTeam(ctx, student, "test_team")
	require.NoError(t, err)

	require.Equal(t, "test_team", team.Name)
	require.Equal(t, student.ID, team.FirstTeammate)
	require.Nil(t, team.SecondTeammate)
	require.NotNil(t, student.TeamID)
	require.Equal(t, team.ID, *student.TeamID)

	stored, err := store.GetByID(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, stored.FirstTeammate)
}

func TestCreateTeamAsTeacher(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())

	_, err := service.CreateTeam(ctx, newTeacher("teacher_username"), "test_team_name")
	require.ErrorIs(t, err, users.ErrMustBeStudent)
}

func TestCreateTeamAsUserAlreadyInAnotherTeam(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)

	student := newStudent("test_username")
	teamID := uuid.New()
	student.TeamID = &teamID

	_, err := service.CreateTeam(ctx, student, "test_team_name")
	require.ErrorIs(t, err, ErrUserAlreadyInTeam)

	// No new team was persisted
	require.Empty(t, store.teams)
}

func TestCreateTeamDuplicateName(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())

	_, err := service.CreateTeam(ctx, newStudent("test_username"), "test_team")
	require.NoError(t, err)

	_, err = service.CreateTeam(ctx, newStudent("test_username2"), "test_team")
	require.ErrorIs(t, err, ErrTeamNameExists)
}

func TestJoinTeam(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)

	student := newStudent("test_username")
	student2 := newStudent("test_username2")

	team, err := service.CreateTeam(ctx, student, "test_team")
	require.NoError(t, err)

	err = service.JoinTeam(ctx, student2, team)
	require.NoError(t, err)

	require.NotNil(t, team.SecondTeammate)
	require.Equal(t, student2.ID, *team.SecondTeammate)
	require.NotNil(t, student2.TeamID)
	require.Equal(t, team.ID, *student2.TeamID)

	stored, err := store.GetByID(ctx, team.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SecondTeammate)
	require.Equal(t, student2.ID, *stored.SecondTeammate)
}

func TestJoinTeamAsTeacher(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: uuid.New()}

	err := service.JoinTeam(ctx, newTeacher("teacher_username"), team)
	require.ErrorIs(t, err, users.ErrMustBeStudent)
}

func TestJoinTeamAlreadyInTeam(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())

	student := newStudent("test_username")
	teamID := uuid.New()
	student.TeamID = &teamID
	otherTeam := &Team{ID: uuid.New(), Name: "other_team", FirstTeammate: uuid.New()}

	err := service.JoinTeam(ctx, student, otherTeam)
	require.ErrorIs(t, err, ErrUserAlreadyInTeam)

	// Joining your own team again is rejected the same way
	ownTeam := &Team{ID: teamID, Name: "own_team", FirstTeammate: student.ID}
	err = service.JoinTeam(ctx, student, ownTeam)
	require.ErrorIs(t, err, ErrUserAlreadyInTeam)
}

func TestJoinFullTeam(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())

	team, err := service.CreateTeam(ctx, newStudent("test_username"), "test_team")
	require.NoError(t, err)
	require.NoError(t, service.JoinTeam(ctx, newStudent("test_username2"), team))

	err = service.JoinTeam(ctx, newStudent("test_username3"), team)
	require.ErrorIs(t, err, ErrTeamIsFull)
}

func TestLeaveOnePersonTeam(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)
	student := newStudent("test_username")

	team, err := service.CreateTeam(ctx, student, "test_team")
	require.NoError(t, err)

	err = service.LeaveTeam(ctx, student)
	require.NoError(t, err)

	// The team no longer exists and the student is detached
	require.Nil(t, student.TeamID)
	_, err = store.GetByID(ctx, team.ID)
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestLeaveFirstFromTwoPersonsTeam(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)

	student := newStudent("test_username")
	student2 := newStudent("test_username2")

	team, err := service.CreateTeam(ctx, student, "test_team")
	require.NoError(t, err)
	require.NoError(t, service.JoinTeam(ctx, student2, team))

	err = service.LeaveTeam(ctx, student)
	require.NoError(t, err)

	// The team persists; the second teammate is promoted to the first slot
	require.Nil(t, student.TeamID)
	require.NotNil(t, student2.TeamID)

	stored, err := store.GetByID(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, student2.ID, stored.FirstTeammate)
	require.Nil(t, stored.SecondTeammate)
}

func TestLeaveSecondFromTwoPersonsTeam(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)

	student := newStudent("test_username")
	student2 := newStudent("test_username2")

	team, err := service.CreateTeam(ctx, student, "test_team")
	require.NoError(t, err)
	require.NoError(t, service.JoinTeam(ctx, student2, team))

	err = service.LeaveTeam(ctx, student2)
	require.NoError(t, err)

	require.Nil(t, student2.TeamID)

	stored, err := store.GetByID(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, stored.FirstTeammate)
	require.Nil(t, stored.SecondTeammate)
}

func TestLeaveTeamAsTeacher(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())

	err := service.LeaveTeam(ctx, newTeacher("teacher_username"))
	require.ErrorIs(t, err, users.ErrMustBeStudent)
}

func TestLeaveTeamAsStudentWithoutTeam(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())

	err := service.LeaveTeam(ctx, newStudent("test_username"))
	require.ErrorIs(t, err, ErrUserNotInTeam)
}

// Two requests by the same student can each load the user while team_id is
// still NULL. The store must reject the second attach regardless of what the
// request's copy of the user says.
func TestAttachUserWithStaleState(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)

	student := newStudent("test_username")
	_, err := service.CreateTeam(ctx, student, "test_team")
	require.NoError(t, err)

	otherTeam, err := service.CreateTeam(ctx, newStudent("test_username2"), "other_team")
	require.NoError(t, err)

	// A concurrent request that read the student before the create committed
	stale := *student
	stale.TeamID = nil

	err = service.JoinTeam(ctx, &stale, otherTeam)
	require.ErrorIs(t, err, ErrUserAlreadyInTeam)

	stored, err := store.GetByID(ctx, otherTeam.ID)
	require.NoError(t, err)
	require.Nil(t, stored.SecondTeammate)

	// Creating a third team from the same stale copy is rejected too
	stale2 := *student
	stale2.TeamID = nil
	_, err = service.CreateTeam(ctx, &stale2, "third_team")
	require.ErrorIs(t, err, ErrUserAlreadyInTeam)
}

func TestLeaveTeamAssignedToProject(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)
	student := newStudent("test_username")

	team, err := service.CreateTeam(ctx, student, "test_team")
	require.NoError(t, err)
	store.assigned[team.ID] = true

	// The sole member leaving would dissolve the team, but an assigned team
	// cannot be deleted
	err = service.LeaveTeam(ctx, student)
	require.ErrorIs(t, err, ErrTeamAssigned)

	require.NotNil(t, student.TeamID)
	_, err = store.GetByID(ctx, team.ID)
	require.NoError(t, err)
}
