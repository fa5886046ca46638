// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/meetup-backend/internal/auth"
	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type ReferenceChecker interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
	CitiesExist(ctx context.Context, ids []int64) (bool, error)
}

type Service struct {
	repo      Repository
	reference ReferenceChecker
}

func NewService(repo Repository, reference ReferenceChecker) *Service {
	return &Service{repo: repo, reference: reference}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Exists reports whether id names a user that is not soft deleted.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	if req.Name.IsNull() {
		return nil, fmt.Errorf("name cannot be null: %w", core.ErrInvalidInput)
	}
	if req.Email.IsNull() {
		return nil, fmt.Errorf("email cannot be null: %w", core.ErrInvalidInput)
	}
	if req.CategoryID.IsNull() {
		return nil, fmt.Errorf(
			"category_id cannot be null: %w",
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email.Present() {
		email := strings.ToLower(req.Email.Value)
		if email != user.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf(
					"email is already in use: %w",
					core.ErrConflict,
				)
			}
		}
		user.Email = email
	}

	if req.CategoryID.Present() {
		ok, err := s.reference.CategoryExists(ctx, req.CategoryID.Value)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, core.NotFoundError("category")
		}
		user.CategoryID = &req.CategoryID.Value
	}

	if req.CityID.Present() {
		ok, err := s.reference.CitiesExist(ctx, []int64{req.CityID.Value})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, core.NotFoundError("city")
		}
		user.CityID = &req.CityID.Value
	} else if req.CityID.IsNull() {
		user.CityID = nil
	}

	if req.Name.Present() {
		user.Name = req.Name.Value
	}

	if req.Birthday.Present() {
		user.Birthday = &req.Birthday.Value
	} else if req.Birthday.IsNull() {
		user.Birthday = nil
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("email is already in use: %w", core.ErrConflict)
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.SoftDelete(ctx, userID)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
