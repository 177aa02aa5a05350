package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Skotchmaster/store_rest/internal/access"
	"github.com/Skotchmaster/store_rest/internal/hash"
	"github.com/Skotchmaster/store_rest/internal/models"
	"github.com/Skotchmaster/store_rest/internal/mykafka"
	"github.com/Skotchmaster/store_rest/internal/repo"
	"github.com/Skotchmaster/store_rest/internal/transport"
	"github.com/Skotchmaster/store_rest/pkg/passwd"
)

type UserService struct {
	Repo      *repo.GormRepo
	Policy    access.Policy
	Passwords passwd.Validator
	Events    mykafka.Publisher
}

func (s *UserService) Register(ctx context.Context, pr access.Principal, req transport.UserRequest) (*models.User, error) {
	if err := authorize(s.Policy, pr, access.ActionRegister, access.Registration()); err != nil {
		return nil, err
	}

	user := &models.User{}
	if err := s.apply(ctx, user, req); err != nil {
		return nil, err
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUsers, "user.registered", user.ID, transport.ToUser(*user))
	return user, nil
}

// CreateSuperuser bypasses the access policy; it is meant for operators with
// direct access to the deployment. An existing active account is promoted
// when password matches it.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	existing, err := found(s.Repo.GetUserByEmail(ctx, normalized))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if existing != nil {
		return s.promote(ctx, existing, password)
	}

	user := &models.User{IsStaff: true, IsSuperuser: true}
	req := transport.UserRequest{Email: email, Password: password, PasswordConfirmation: password}
	if err := s.apply(ctx, user, req); err != nil {
		return nil, err
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUsers, "user.superuser_created", user.ID, transport.ToUser(*user))
	return user, nil
}

func (s *UserService) promote(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, invalid("email", "user with this email already exists")
	}
	if user.IsStaff && user.IsSuperuser {
		return user, nil
	}
	user.IsStaff, user.IsSuperuser = true, true
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUsers, "user.superuser_promoted", user.ID, transport.ToUser(*user))
	return user, nil
}

func (s *UserService) create(ctx context.Context, user *models.User) error {
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return invalid("email", "user with this email already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserService) load(ctx context.Context, id uint) (*models.User, error) {
	return found(s.Repo.GetUser(ctx, id))
}

func (s *UserService) GetUser(ctx context.Context, pr access.Principal, id uint) (*models.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionRead, access.UserTarget(id, user)); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, pr access.Principal, offset, limit int) (int64, []models.User, error) {
	if err := authorize(s.Policy, pr, access.ActionList, access.Collection(access.KindUser)); err != nil {
		return 0, nil, err
	}
	return s.Repo.ListUsers(ctx, offset, limit)
}

func (s *UserService) UpdateUser(ctx context.Context, pr access.Principal, id uint, req transport.UserRequest) (*models.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionUpdate, access.UserTarget(id, user)); err != nil {
		return nil, err
	}

	if err := s.apply(ctx, user, req); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, invalid("email", "user with this email already exists")
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUsers, "user.updated", user.ID, transport.ToUser(*user))
	return user, nil
}

func (s *UserService) DeactivateUser(ctx context.Context, pr access.Principal, id uint) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(s.Policy, pr, access.ActionDelete, access.UserTarget(id, user)); err != nil {
		return err
	}
	if err := s.Repo.DeactivateUser(ctx, id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUsers, "user.deactivated", id, nil)
	return nil
}

// UserOrders pages over the items of every active order user id owns;
// reading them needs the same right as reading the user.
func (s *UserService) UserOrders(ctx context.Context, pr access.Principal, id uint, offset, limit int) (int64, []models.OrderItem, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return 0, nil, err
	}
	if err := authorize(s.Policy, pr, access.ActionRead, access.UserTarget(id, user)); err != nil {
		return 0, nil, err
	}
	return s.Repo.ListItemsByUser(ctx, id, offset, limit)
}

// apply validates req and writes it onto user, hashing the new password.
func (s *UserService) apply(ctx context.Context, user *models.User, req transport.UserRequest) error {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return err
	}
	taken, err := s.Repo.EmailTaken(ctx, email, user.ID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return invalid("email", "user with this email already exists")
	}

	if req.Password == "" {
		return invalid("password", "this field is required")
	}
	if req.Password != req.PasswordConfirmation {
		return invalid("password_confirmation", "passwords do not match")
	}
	if s.Passwords != nil {
		if err := s.Passwords.Validate(req.Password, email); err != nil {
			return invalid("password", err.Error())
		}
	}

	var birth *time.Time
	if req.BirthDate != nil && strings.TrimSpace(*req.BirthDate) != "" {
		t, err := time.Parse(transport.DateLayout, strings.TrimSpace(*req.BirthDate))
		if err != nil {
			return invalid("birth_date", "date has wrong format, use YYYY-MM-DD")
		}
		birth = &t
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.Email = email
	user.PasswordHash = hashed
	user.BirthDate = birth
	return nil
}

// NormalizeEmail checks the address syntax and lowercases the domain part.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("email", "this field is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", invalid("email", "enter a valid email address")
	}
	at := strings.LastIndex(raw, "@")
	return raw[:at] + "@" + strings.ToLower(raw[at+1:]), nil
}
