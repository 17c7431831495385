package teams

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAddMemberFillsSecondSlot(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: first}

	require.NoError(t, team.AddMember(second))
	require.Equal(t, first, team.FirstTeammate)
	require.NotNil(t, team.SecondTeammate)
	require.Equal(t, second, *team.SecondTeammate)
	require.True(t, team.IsFull())
	require.Equal(t, []uuid.UUID{first, second}, team.MemberIDs())
}

func TestAddMemberToFullTeam(t *testing.T) {
	second := uuid.New()
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: uuid.New(), SecondTeammate: &second}

	err := team.AddMember(uuid.New())
	require.ErrorIs(t, err, ErrTeamIsFull)
}

func TestRemoveSecondTeammate(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: first, SecondTeammate: &second}

	dissolved, err := team.RemoveMember(second)
	require.NoError(t, err)
	require.False(t, dissolved)
	require.Equal(t, first, team.FirstTeammate)
	require.Nil(t, team.SecondTeammate)
}

func TestRemoveFirstTeammatePromotesSecond(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: first, SecondTeammate: &second}

	dissolved, err := team.RemoveMember(first)
	require.NoError(t, err)
	require.False(t, dissolved)
	require.Equal(t, second, team.FirstTeammate)
	require.Nil(t, team.SecondTeammate)
}

func TestRemoveSoleMemberDissolvesTeam(t *testing.T) {
	first := uuid.New()
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: first}

	dissolved, err := team.RemoveMember(first)
	require.NoError(t, err)
	require.True(t, dissolved)
}

func TestRemoveNonMember(t *testing.T) {
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: uuid.New()}

	_, err := team.RemoveMember(uuid.New())
	require.ErrorIs(t, err, ErrUserNotInTeam)
}

func TestHasMember(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	team := &Team{ID: uuid.New(), Name: "test_team", FirstTeammate: first}

	require.True(t, team.HasMember(first))
	require.False(t, team.HasMember(second))

	require.NoError(t, team.AddMember(second))
	require.True(t, team.HasMember(second))
}
