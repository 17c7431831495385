package teams

import "errors"

var (
	// ErrTeamNameExists is returned when the team name is already taken.
	ErrTeamNameExists = errors.New("team with given name already exists")
	// ErrTeamNotFound is returned when a team does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrUserAlreadyInTeam is returned when the student already has a team.
	ErrUserAlreadyInTeam = errors.New("user is already in a team")
	// ErrUserNotInTeam is returned when the student has no team.
	ErrUserNotInTeam = errors.New("user is not in a team")
	// ErrTeamIsFull is returned when both teammate slots are occupied.
	ErrTeamIsFull = errors.New("team is full")
	// ErrTeamAssigned is returned when leaving would dissolve a team that is
	// assigned to a project.
	ErrTeamAssigned = errors.New("team is assigned to a project")
)
