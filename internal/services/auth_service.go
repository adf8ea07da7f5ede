package services

import (
	"context"
	"regexp"
	"strings"

	"carpool/internal/auth"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/logger"

	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService registers users and exchanges credentials for bearer tokens.
type AuthService struct {
	Users  UserStore
	Tokens *auth.TokenManager
	Log    *zap.Logger
}

type RegisterInput struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	DriverLicense string
	Gender        string
}

func (in RegisterInput) normalized() RegisterInput {
	return RegisterInput{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         normalizeEmail(in.Email),
		Password:      in.Password,
		DriverLicense: strings.TrimSpace(in.DriverLicense),
		Gender:        strings.TrimSpace(in.Gender),
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s AuthService) log() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Nop()
}

// Register validates in and stores a new USER with a hashed password.
func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in = in.normalized()

	missing := map[string]bool{
		"firstName":     in.FirstName == "",
		"lastName":      in.LastName == "",
		"email":         in.Email == "",
		"password":      in.Password == "",
		"driverLicense": in.DriverLicense == "",
		"gender":        in.Gender == "",
	}
	for _, absent := range missing {
		if absent {
			return models.User{}, domain.ValidationError{Msg: "All fields are required", Details: missing}
		}
	}
	if !emailPattern.MatchString(in.Email) {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "Invalid email format"}
	}
	if len(in.Password) < auth.MinPasswordLength {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "Password must be at least 6 characters long"}
	}
	if len(in.Password) > auth.MaxPasswordLength {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "Password must be at most 72 bytes long"}
	}

	if _, err := s.Users.GetByEmail(ctx, in.Email); err == nil {
		return models.User{}, domain.DuplicateError{Resource: "User"}
	} else if !domain.IsNotFound(err) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}

	u := models.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		PasswordHash:  hash,
		DriverLicense: in.DriverLicense,
		Gender:        in.Gender,
		Role:          domain.RoleUser,
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		if domain.IsDuplicate(err) {
			return models.User{}, domain.DuplicateError{Resource: "User", Err: err}
		}
		return models.User{}, err
	}
	s.log().Info("user registered", logger.Int64("user_id", u.ID))
	return u, nil
}

// Login returns a one hour token binding the user's id and email.
func (s AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return "", err
	}
	tok, err := s.Tokens.IssueUserToken(u.ID, u.Email)
	if err != nil {
		return "", domain.InternalError{Msg: "issue token", Err: err}
	}
	return tok, nil
}

// AdminLogin is Login for ADMIN users. Non-admins get the same error as a
// wrong password.
func (s AuthService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	u, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return "", err
	}
	if u.Role != domain.RoleAdmin {
		s.log().Warn("admin login by non-admin", logger.Int64("user_id", u.ID))
		return "", domain.InvalidCredentialsError{}
	}
	tok, err := s.Tokens.IssueAdminToken(u.ID, u.Role)
	if err != nil {
		return "", domain.InternalError{Msg: "issue token", Err: err}
	}
	return tok, nil
}

func (s AuthService) checkCredentials(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, domain.InvalidCredentialsError{}
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, domain.InvalidCredentialsError{}
		}
		return models.User{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return models.User{}, domain.InvalidCredentialsError{}
	}
	return u, nil
}

// EnsureAdmin creates an ADMIN account for email, or promotes the existing
// account to ADMIN. created reports which of the two happened.
func (s AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (u models.User, created bool, err error) {
	in = in.normalized()
	existing, err := s.Users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if err := s.Users.SetRole(ctx, existing.ID, domain.RoleAdmin); err != nil {
			return models.User{}, false, err
		}
		existing.Role = domain.RoleAdmin
		s.log().Info("user promoted to admin", logger.Int64("user_id", existing.ID))
		return existing, false, nil
	case !domain.IsNotFound(err):
		return models.User{}, false, err
	}

	u, err = s.Register(ctx, in)
	if err != nil {
		return models.User{}, false, err
	}
	if err := s.Users.SetRole(ctx, u.ID, domain.RoleAdmin); err != nil {
		return models.User{}, false, err
	}
	u.Role = domain.RoleAdmin
	s.log().Info("admin created", logger.Int64("user_id", u.ID))
	return u, true, nil
}
