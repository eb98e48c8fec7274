package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"inventaris/internal/domain"
	"inventaris/internal/repository"
	"inventaris/internal/service"
)

var ErrInvalidCredentials = errors.New("No active account found with the given credentials")

// minPassword минимальная длина пароля при регистрации
const minPassword = 6

// Service учётные записи и выдача токенов
type Service struct {
	users  repository.UserRepository
	tokens *Tokens
}

func NewService(users repository.UserRepository, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Tokens() *Tokens { return s.tokens }

// Seed создаёт пользователя, если его ещё нет
func (s *Service) Seed(ctx context.Context, username, password string) error {
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	_, err = s.create(ctx, username, "", password)
	return err
}

func (s *Service) create(ctx context.Context, username, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register регистрирует нового пользователя
func (s *Service) Register(ctx context.Context, r domain.Registration) (*domain.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	bad := service.Violations{}
	bad.Required("username", r.Username)
	if len(r.Password) < minPassword {
		bad["password"] = fmt.Sprintf("minimal %d karakter", minPassword)
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			bad["email"] = "tidak valid"
		}
	}
	if err := bad.Err(); err != nil {
		return nil, err
	}
	u, err := s.create(ctx, r.Username, r.Email, r.Password)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, &service.ValidationError{Fields: service.Violations{"username": "sudah digunakan"}}
	}
	return u, err
}

// Login проверяет пароль и выдаёт пару токенов
func (s *Service) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	access, err := s.tokens.Access(u.ID, u.Username)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.tokens.Refresh(u.ID, u.Username)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh обменивает refresh-токен на новый access (refresh не ротируется)
func (s *Service) Refresh(ctx context.Context, raw string) (domain.TokenPair, error) {
	claims, err := s.tokens.Parse(raw, TokenRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID())
	if errors.Is(err, repository.ErrNotFound) {
		return domain.TokenPair{}, ErrInvalidToken
	}
	if err != nil {
		return domain.TokenPair{}, err
	}
	access, err := s.tokens.Access(u.ID, u.Username)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access}, nil
}

// Authenticate проверяет access-токен
func (s *Service) Authenticate(raw string) (*Claims, error) {
	return s.tokens.Parse(raw, TokenAccess)
}

func (s *Service) Profile(ctx context.Context, userID int64) (domain.Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}
