package users

import "errors"

var (
	// ErrUsernameExists is returned when the username is already taken by any user.
	ErrUsernameExists = errors.New("user with given username already exists")
	// ErrEmailExists is returned when the email is already taken by any user.
	ErrEmailExists = errors.New("user with given email already exists")
	// ErrStudentNoExists is returned when another student holds the student number.
	ErrStudentNoExists = errors.New("student with given student number already exists")
	// ErrInvalidPassword is returned on password change with a wrong current password.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrMustBeStudent is returned when a student-only operation is called by a teacher.
	ErrMustBeStudent = errors.New("user must be a student")
	// ErrMustBeTeacher is returned when a teacher-only operation is called by a student.
	ErrMustBeTeacher = errors.New("user must be a teacher")
)
