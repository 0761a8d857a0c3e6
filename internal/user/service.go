package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Tokens is the part of the token service accounts need.
type Tokens interface {
	Issue(userID int64) (string, time.Time, error)
	Revoke(ctx context.Context, token string) error
}

type Service struct {
	store      Store
	tokens     Tokens
	bcryptCost int
}

func NewService(store Store, tokens Tokens) *Service {
	return &Service{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates an account. Username and email uniqueness are checked
// before anything is written.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if err := s.checkUnique(ctx, req.Username, req.Email, 0); err != nil {
		return nil, err
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPwd),
		Name:     req.Name,
		Surname:  req.Surname,
	}
	if _, err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password fail the same way.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, time.Time, error) {
	u, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, errBadCredentials
		}
		return "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return "", time.Time{}, errBadCredentials
	}

	return s.StartSession(u.ID)
}

// StartSession issues a session token for userID.
func (s *Service) StartSession(userID int64) (string, time.Time, error) {
	return s.tokens.Issue(userID)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// EditProfile applies the non-nil fields of req to the caller's account.
func (s *Service) EditProfile(ctx context.Context, id int64, req *EditProfileRequest) error {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	username, email := "", ""
	if req.Username != nil && *req.Username != u.Username {
		username = *req.Username
	}
	if req.Email != nil && *req.Email != u.Email {
		email = *req.Email
	}
	if err := s.checkUnique(ctx, username, email, id); err != nil {
		return err
	}

	if username != "" {
		u.Username = username
	}
	if email != "" {
		u.Email = email
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Surname != nil {
		u.Surname = *req.Surname
	}
	if req.Password != nil {
		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = string(hashedPwd)
	}

	return s.store.Update(ctx, u)
}

func (s *Service) SetAvatar(ctx context.Context, id int64, data []byte) error {
	return s.store.SetAvatar(ctx, id, data)
}

func (s *Service) Avatar(ctx context.Context, id int64) ([]byte, error) {
	return s.store.Avatar(ctx, id)
}

// checkUnique skips empty values.
func (s *Service) checkUnique(ctx context.Context, username, email string, exceptID int64) error {
	if username != "" {
		taken, err := s.store.UsernameTaken(ctx, username, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
	}
	if email != "" {
		taken, err := s.store.EmailTaken(ctx, email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
	}
	return nil
}
