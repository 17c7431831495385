package projects

import "errors"

var (
	// ErrProjectNameExists is returned when the project name is already taken.
	ErrProjectNameExists = errors.New("project with given name already exists")
	// ErrProjectNotFound is returned when a project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectHasAssignedTeam is returned on deleting a project with an assigned team.
	ErrProjectHasAssignedTeam = errors.New("project has an assigned team")
	// ErrNoTeam is returned when the student has no team to queue with.
	ErrNoTeam = errors.New("user has no team")
	// ErrTeamAlreadyQueued is returned when the team is already queued on some project.
	ErrTeamAlreadyQueued = errors.New("team is already queued on a project")
	// ErrTeamNotQueued is returned when the team is not queued on this project.
	ErrTeamNotQueued = errors.New("team is not queued on this project")
	// ErrNoTeamsQueued is returned on assigning a project with an empty queue.
	ErrNoTeamsQueued = errors.New("no teams queued on this project")
)
