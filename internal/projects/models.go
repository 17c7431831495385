package projects

import (
	"time"

	"github.com/google/uuid"
)

// Status represents project lifecycle state
type Status string

const (
	StatusOpen     Status = "open"
	StatusAssigned Status = "assigned"
)

// Project represents a project posted by a teacher. Teams queue against it
// until exactly one of them is assigned; the queue is kept in a separate
// relation and never contains the same team twice.
type Project struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	Description  string     `db:"description"`
	Status       Status     `db:"status"`
	Author       uuid.UUID  `db:"author"`
	AssignedTeam *uuid.UUID `db:"assigned_team"`
	CreatedAt    time.Time  `db:"created_at"`
}
