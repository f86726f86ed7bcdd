package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
)

const resourceUser = "user"

// UserInput holds the fields of a new collaborator.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserUpdate holds the fields to change. Nil fields are kept.
type UserUpdate struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UserService lets management administer collaborators.
type UserService struct {
	base
}

func NewUserService(store Store, opts ...Option) *UserService {
	return &UserService{base: newBase(store, opts)}
}

func validateRole(field, value string, v validation.Violations) models.Role {
	role, ok := models.ParseRole(value)
	if !ok {
		v[field] = "must be one of commercial, support, gestion"
	}
	return role
}

// Create adds a collaborator with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, id auth.Identity, in UserInput) (u *models.User, err error) {
	defer s.trace("user.create", id, &err)
	if err := requireRole(id, models.RoleGestion); err != nil {
		return nil, err
	}

	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	role := validateRole("role", in.Role, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.Email)
	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("email already in use")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u = &models.User{Name: strings.TrimSpace(in.Name), Email: email, Password: hash, Role: role}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"new_user_id": u.ID, "role": u.Role, "user_id": id.ID}).Info("user created")
	s.record(ctx, id, resourceUser, u.ID, "create", "role="+string(u.Role))
	return u, nil
}

func (s *UserService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

// Update changes the name, password or role of the user with email.
func (s *UserService) Update(ctx context.Context, id auth.Identity, email string, in UserUpdate) (u *models.User, err error) {
	defer s.trace("user.update", id, &err)
	if err := requireRole(id, models.RoleGestion); err != nil {
		return nil, err
	}
	u, err = s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	v := validation.Violations{}
	if in.Name != nil {
		validation.Required("name", *in.Name, v)
	}
	if in.Password != nil {
		validation.Required("password", *in.Password, v)
	}
	var role models.Role
	if in.Role != nil {
		role = validateRole("role", *in.Role, v)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var changed []string
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
		changed = append(changed, "name")
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		changed = append(changed, "password")
	}
	if in.Role != nil {
		u.Role = role
		changed = append(changed, "role")
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"target_id": u.ID, "user_id": id.ID}).Info("user updated")
	s.record(ctx, id, resourceUser, u.ID, "update", "fields="+strings.Join(changed, ","))
	return u, nil
}

// Delete removes the user with email unless a client, contract or event
// still references them.
func (s *UserService) Delete(ctx context.Context, id auth.Identity, email string) (err error) {
	defer s.trace("user.delete", id, &err)
	if err := requireRole(id, models.RoleGestion); err != nil {
		return err
	}
	var deleted *models.User
	err = s.store.Transaction(ctx, func(tx Store) error {
		u, err := tx.FindUserByEmail(ctx, strings.TrimSpace(email))
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if u == nil {
			return apperrors.NotFound("user not found")
		}
		n, err := tx.CountUserReferences(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("count references: %w", err)
		}
		if n > 0 {
			return apperrors.WithMetadata(apperrors.CodeConflict, "user still referenced by clients, contracts or events",
				map[string]string{"references": fmt.Sprint(n)})
		}
		if err := tx.DeleteUser(ctx, u.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		deleted = u
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"target_id": deleted.ID, "user_id": id.ID}).Info("user deleted")
	s.record(ctx, id, resourceUser, deleted.ID, "delete", "email="+deleted.Email)
	return nil
}

// ListSupport returns the support users management can assign.
func (s *UserService) ListSupport(ctx context.Context, id auth.Identity) (users []models.User, err error) {
	defer s.trace("user.list_support", id, &err)
	if err := requireRole(id, models.RoleGestion); err != nil {
		return nil, err
	}
	users, err = s.store.ListUsersByRole(ctx, models.RoleSupport)
	if err != nil {
		return nil, fmt.Errorf("list support users: %w", err)
	}
	return users, nil
}
