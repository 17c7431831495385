package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence contract the service works against.
// *Repository is the production implementation; tests use an in-memory fake.
type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	StudentNoTaken(ctx context.Context, studentNo int64) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
}

// Service provides account business logic
type Service struct {
	store Store
}

// NewService creates a new user service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateTeacherInput contains data needed to register a teacher
type CreateTeacherInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateStudentInput contains data needed to register a student
type CreateStudentInput struct {
	StudentNo int64  `json:"student_no" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// checkIdentityFree verifies the shared username/email namespace.
// Username is checked before email so the first violation wins.
func (s *Service) checkIdentityFree(ctx context.Context, username, email string) error {
	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameExists
	}

	// A blank email is allowed and never collides
	if email != "" {
		taken, err = s.store.EmailTaken(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}
	}

	return nil
}

// CreateTeacher registers a new teacher account
func (s *Service) CreateTeacher(ctx context.Context, input CreateTeacherInput) (*User, error) {
	if err := s.checkIdentityFree(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:       uuid.New(),
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashedPassword),
		Role:     RoleTeacher,
		Status:   StudentStatusFree,
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// CreateStudent registers a new student account.
// Check order: username, then email, then student number — the first violation
// found is the one reported.
func (s *Service) CreateStudent(ctx context.Context, input CreateStudentInput) (*User, error) {
	if err := s.checkIdentityFree(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	taken, err := s.store.StudentNoTaken(ctx, input.StudentNo)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrStudentNoExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	studentNo := input.StudentNo
	user := &User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashedPassword),
		Role:      RoleStudent,
		StudentNo: &studentNo,
		Status:    StudentStatusFree,
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword replaces the user's password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, user *User, currentPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}

	user.Password = string(hashedPassword)
	return nil
}

// ChangeEmail replaces the user's email if no other user holds it
func (s *Service) ChangeEmail(ctx context.Context, user *User, newEmail string) error {
	taken, err := s.store.EmailTaken(ctx, newEmail)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailExists
	}

	if err := s.store.UpdateEmail(ctx, user.ID, newEmail); err != nil {
		return err
	}

	user.Email = newEmail
	return nil
}

// Authenticate authenticates a user by username and password.
// Unknown user and wrong password are reported identically so that
// accounts cannot be enumerated.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, id)
}
