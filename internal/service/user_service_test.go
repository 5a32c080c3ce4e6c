package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"userauth/internal/auth"
	"userauth/internal/model"
	"userauth/internal/repository"
)

func newUserService(repo repository.UserRepository) UserService {
	return NewUserService(repo, auth.NewPasswordHasher(bcrypt.MinCost))
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func createInput(isAdmin *bool) CreateUserInput {
	return CreateUserInput{
		Name:     "Alice",
		Email:    " A@X.com",
		Password: "Abcd123!",
		Phone:    "0501234567",
		Address:  model.Address{Country: "IL", City: "Haifa", Street: "Herzl", Building: 1},
		IsAdmin:  isAdmin,
	}
}

func TestUserService_CreateAdminFlag(t *testing.T) {
	adminID := uuid.New()
	userID := uuid.New()
	ghostID := uuid.New()

	tests := []struct {
		name      string
		actorID   uuid.UUID
		isAdmin   *bool
		setupMock func(*MockUserRepository)
		wantAdmin bool
	}{
		{
			name:    "anonymous request cannot self-elevate",
			actorID: uuid.Nil,
			isAdmin: boolPtr(true),
		},
		{
			name:    "regular user cannot grant admin",
			actorID: userID,
			isAdmin: boolPtr(true),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)
			},
		},
		{
			name:    "deleted admin session cannot grant admin",
			actorID: ghostID,
			isAdmin: boolPtr(true),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, ghostID).Return(nil, repository.ErrUserNotFound)
			},
		},
		{
			name:    "admin without explicit flag creates regular user",
			actorID: adminID,
		},
		{
			name:    "admin grants admin",
			actorID: adminID,
			isAdmin: boolPtr(true),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, adminID).Return(&model.User{ID: adminID, IsAdmin: true}, nil)
			},
			wantAdmin: true,
		},
		{
			name:    "admin explicitly creates regular user",
			actorID: adminID,
			isAdmin: boolPtr(false),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, adminID).Return(&model.User{ID: adminID, IsAdmin: true}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

			user, err := newUserService(repo).Create(context.Background(), tt.actorID, createInput(tt.isAdmin))

			require.NoError(t, err)
			assert.Equal(t, tt.wantAdmin, user.IsAdmin)
			assert.Equal(t, "a@x.com", user.Email)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Abcd123!")))
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_CreateDuplicate(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail)

	_, err := newUserService(repo).Create(context.Background(), uuid.Nil, createInput(nil))

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_ListEmptyIsError(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("List", mock.Anything).Return([]model.User{}, nil).Once()

	_, err := newUserService(repo).List(context.Background())
	assert.ErrorIs(t, err, ErrNoUsers)

	repo.On("List", mock.Anything).Return([]model.User{{Email: "a@x.com"}}, nil).Once()
	users, err := newUserService(repo).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_Update(t *testing.T) {
	targetID := uuid.New()
	target := func() *model.User {
		return &model.User{ID: targetID, Name: "Old", Email: "old@x.com", PasswordHash: "old-hash"}
	}

	t.Run("self update ignores isAdmin", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, targetID).Return(target(), nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		actor := &model.User{ID: targetID}
		user, err := newUserService(repo).Update(context.Background(), actor, targetID, UpdateUserInput{
			Name:     strPtr("New"),
			Email:    strPtr("NEW@x.com"),
			Password: strPtr("Xyz789!a"),
			IsAdmin:  boolPtr(true),
		})

		require.NoError(t, err)
		assert.Equal(t, "New", user.Name)
		assert.Equal(t, "new@x.com", user.Email)
		assert.False(t, user.IsAdmin)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Xyz789!a")))
	})

	t.Run("admin can promote", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, targetID).Return(target(), nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := newUserService(repo).Update(context.Background(), &model.User{ID: uuid.New(), IsAdmin: true}, targetID, UpdateUserInput{IsAdmin: boolPtr(true)})

		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		assert.Equal(t, "old-hash", user.PasswordHash)
	})

	t.Run("missing target", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, targetID).Return(nil, repository.ErrUserNotFound)

		_, err := newUserService(repo).Update(context.Background(), &model.User{IsAdmin: true}, targetID, UpdateUserInput{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, targetID).Return(target(), nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail)

		_, err := newUserService(repo).Update(context.Background(), &model.User{ID: targetID}, targetID, UpdateUserInput{Email: strPtr("taken@x.com")})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserService_Delete(t *testing.T) {
	id := uuid.New()
	repo := new(MockUserRepository)
	repo.On("Delete", mock.Anything, id).Return(repository.ErrUserNotFound).Once()
	repo.On("Delete", mock.Anything, id).Return(nil).Once()
	svc := newUserService(repo)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), ErrUserNotFound)
	assert.NoError(t, svc.Delete(context.Background(), id))
}

func TestUserService_EnsureAdmin(t *testing.T) {
	t.Run("creates when missing", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrUserNotFound)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		user, created, err := newUserService(repo).EnsureAdmin(context.Background(), createInput(nil))
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, user.IsAdmin)
	})

	t.Run("promotes existing user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{Email: "a@x.com"}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool { return u.IsAdmin })).Return(nil)

		user, created, err := newUserService(repo).EnsureAdmin(context.Background(), createInput(nil))
		require.NoError(t, err)
		assert.False(t, created)
		assert.True(t, user.IsAdmin)
		repo.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("timeout"))

		_, _, err := newUserService(repo).EnsureAdmin(context.Background(), createInput(nil))
		assert.Error(t, err)
	})
}
