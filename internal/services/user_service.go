package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finanzas/internal/auth"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
)

// Session is the result of a successful register or login.
type Session struct {
	User      core.User
	Token     string
	ExpiresAt time.Time
}

// ProfileUpdate carries the optional fields of a profile edit.
type ProfileUpdate struct {
	Name          *string
	MonthlyBudget *core.Money
}

type UserService struct {
	store     UserStore
	tokens    *auth.TokenService
	summaries SummaryInvalidator
}

func NewUserService(store UserStore, tokens *auth.TokenService, summaries SummaryInvalidator) *UserService {
	return &UserService{store: store, tokens: tokens, summaries: summaries}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (Session, error) {
	u := core.User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return Session{}, err
	}
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrWeakPassword) {
		return Session{}, &core.ValidationError{Field: "password", Err: err}
	}
	if err != nil {
		return Session{}, err
	}
	u.PasswordHash = hash

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return Session{}, err
	}
	slog.InfoContext(ctx, "User registered", applog.FieldUserID, created.ID)
	return s.session(created)
}

// Login checks credentials. Unknown email and wrong password both yield
// core.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, core.ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		slog.WarnContext(ctx, "Login rejected", applog.FieldUserID, u.ID)
		return Session{}, core.ErrUnauthorized
	}
	return s.session(u)
}

func (s *UserService) session(u core.User) (Session, error) {
	token, exp, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (core.User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (core.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if upd.Name != nil {
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.MonthlyBudget != nil {
		u.MonthlyBudget = *upd.MonthlyBudget
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if err := s.store.UpdateUserProfile(ctx, u); err != nil {
		return core.User{}, err
	}
	if upd.MonthlyBudget != nil && s.summaries != nil {
		s.summaries.InvalidateUser(userID)
	}
	return u, nil
}
