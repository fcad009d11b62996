package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bazaar/internal/domain"
	"bazaar/internal/kvstore"
	"bazaar/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

var ErrCompanyRequired = errors.New("sellers must provide a company name")

const userDataNamespace = "user_data"

type SignUpInput struct {
	Email       string
	Password    string
	Name        string
	Age         int
	UserType    string
	CompanyName string
}

type AuthService struct {
	Users *repos.UserRepo
	Store *kvstore.Store
}

func NewAuthService(users *repos.UserRepo, store *kvstore.Store) *AuthService {
	return &AuthService{Users: users, Store: store}
}

func userDataNS(userID string) string { return userDataNamespace + ":" + userID }

// SignUp creates the account, writes the profile document, and binds the
// session so the caller is logged in immediately.
func (s *AuthService) SignUp(ctx context.Context, sid string, in SignUpInput) (*domain.User, error) {
	if in.UserType != domain.UserTypeSeller {
		in.UserType = domain.UserTypeBuyer
	}
	if in.UserType == domain.UserTypeSeller && in.CompanyName == "" {
		return nil, ErrCompanyRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:          uuid.NewString(),
		Email:       in.Email,
		Name:        in.Name,
		Hash:        string(hash),
		Age:         in.Age,
		UserType:    in.UserType,
		CompanyName: in.CompanyName,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	s.cacheUserType(ctx, u)
	return u, nil
}

func (s *AuthService) SignIn(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	s.cacheUserType(ctx, u)
	return u, nil
}

func (s *AuthService) SignOut(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// cacheUserType mirrors the profile's buyer/seller flag into the key-value
// store; a lookup there saves a session join on hot paths. Best-effort.
func (s *AuthService) cacheUserType(ctx context.Context, u *domain.User) {
	_ = s.Store.SetString(ctx, userDataNS(u.ID), "user_type", u.UserType)
}
