package users

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// StudentStatus represents assignment state of a student
type StudentStatus string

const (
	StudentStatusFree     StudentStatus = "free"
	StudentStatusAssigned StudentStatus = "assigned"
)

// User represents a user in the system.
// Students and teachers share one table and one username/email namespace;
// the role column is the subtype discriminator. StudentNo, Status and TeamID
// are meaningful for students only.
type User struct {
	ID        uuid.UUID     `db:"id"`
	Username  string        `db:"username"`
	Email     string        `db:"email"` // may be blank at creation
	Password  string        `db:"password_hash"` // This will store the hash
	Role      Role          `db:"role"`
	StudentNo *int64        `db:"student_no"`
	Status    StudentStatus `db:"status"`
	TeamID    *uuid.UUID    `db:"team_id"`
	CreatedAt time.Time     `db:"created_at"`
}

// IsStudent reports whether the user is a student
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsTeacher reports whether the user is a teacher
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
