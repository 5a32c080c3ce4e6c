package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"userauth/internal/auth"
	"userauth/internal/model"
	"userauth/internal/repository"
)

var (
	// ErrEmailTaken is returned when another user already has the email.
	ErrEmailTaken = errors.New("email is already busy")
	// ErrNoUsers is returned by List when the store holds no users.
	ErrNoUsers = errors.New("no users found")
)

// CreateUserInput carries a new account. IsAdmin is a request, honored only
// when an existing admin is creating the account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  model.Address
	IsAdmin  *bool
}

// UpdateUserInput carries a partial update; nil fields are left as they are.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Phone    *string
	Address  *model.Address
	IsAdmin  *bool
}

// UserService exposes domain operations.
type UserService interface {
	// Create registers a user. actorID is the session user, uuid.Nil when there is none.
	Create(ctx context.Context, actorID uuid.UUID, in CreateUserInput) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Update applies in to user id on behalf of actor. Only admins may change IsAdmin.
	Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// EnsureAdmin creates an admin from in, or promotes the user holding in.Email.
	EnsureAdmin(ctx context.Context, in CreateUserInput) (*model.User, bool, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher *auth.PasswordHasher
}

// NewUserService builds a UserService over the repository.
func NewUserService(repo repository.UserRepository, hasher *auth.PasswordHasher) UserService {
	return &userService{repo: repo, hasher: hasher}
}

func (s *userService) Create(ctx context.Context, actorID uuid.UUID, in CreateUserInput) (*model.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.grantAdmin(ctx, actorID, in.IsAdmin)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         in.Name,
		Email:        model.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		IsAdmin:      admin,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "create user")
	}
	return user, nil
}

// grantAdmin resolves the actor from the store; a stale session or a non-admin
// actor always yields false.
func (s *userService) grantAdmin(ctx context.Context, actorID uuid.UUID, requested *bool) (bool, error) {
	if actorID == uuid.Nil || requested == nil {
		return false, nil
	}
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve actor: %w", err)
	}
	return actor.IsAdmin && *requested, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "find user")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNoUsers
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateUserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "find user")
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = model.NormalizeEmail(*in.Email)
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if in.IsAdmin != nil && actor != nil && actor.IsAdmin {
		user.IsAdmin = *in.IsAdmin
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "update user")
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete user")
	}
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, in CreateUserInput) (*model.User, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, model.NormalizeEmail(in.Email))
	switch {
	case err == nil:
		if existing.IsAdmin {
			return existing, false, nil
		}
		existing.IsAdmin = true
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, mapRepoError(err, "promote user")
		}
		return existing, false, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, false, fmt.Errorf("find admin: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:         in.Name,
		Email:        model.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		IsAdmin:      true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, false, mapRepoError(err, "create admin")
	}
	return user, true, nil
}

func mapRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
