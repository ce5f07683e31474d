package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/user"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/platform/tokens"
)

const MinPasswordLength = 6

type AuthResult struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
	User         *types.User `json:"user"`
}

type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	// Authenticate resolves an access token to an active user's id.
	Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error)
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	issuer   *tokens.Issuer
	mailer   Mailer
	// dummyHash keeps unknown-email logins as slow as wrong-password ones.
	dummyHash []byte
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	issuer *tokens.Issuer,
	mailer Mailer,
) AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		userRepo:  userRepo,
		issuer:    issuer,
		mailer:    mailer,
		dummyHash: dummy,
	}
}

var (
	errInvalidCredentials = apierr.Unauthorized("invalid_credentials", "invalid email or password")
	errAccountInactive    = apierr.Unauthorized("account_inactive", "account is not active")
	errInvalidToken       = apierr.Unauthorized("invalid_token", "invalid or expired token")
)

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = trim(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Role = trim(in.Role)
	in.Department = trim(in.Department)

	fe := fieldErrors{}
	fe.required("name", in.Name)
	fe.maxLen("name", in.Name, 120)
	fe.required("email", in.Email)
	fe.email("email", in.Email)
	if len(in.Password) < MinPasswordLength {
		fe.add("password", "password must be at least 6 characters")
	}
	fe.oneOf("role", in.Role, user.Roles)
	if in.Role == types.RoleAdmin {
		fe.add("role", "admin accounts cannot be self-registered")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = user.DefaultRole
	}
	if in.Department == "" {
		in.Department = user.DefaultDepartment
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	var result *AuthResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := as.userRepo.EmailExists(ctx, tx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return apierr.Conflict("email is already registered")
		}
		u, err := as.userRepo.Create(ctx, tx, &types.User{
			Name:       in.Name,
			Email:      in.Email,
			Password:   hash,
			Role:       in.Role,
			Department: in.Department,
			Status:     types.UserStatusActive,
		})
		if err != nil {
			return err
		}
		result, err = as.issue(u)
		return err
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", result.User.ID, "role", result.User.Role)
	as.mailer.SendWelcome(ctx, result.User)
	return result, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		fe := fieldErrors{}
		fe.required("email", email)
		fe.required("password", password)
		return nil, fe.err()
	}

	var result *AuthResult
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := as.userRepo.GetByEmail(ctx, tx, email)
		if errors.Is(err, apierr.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(as.dummyHash, []byte(password))
			return errInvalidCredentials
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return errInvalidCredentials
		}
		if !u.IsActive() {
			return errAccountInactive
		}
		now := time.Now().UTC()
		if err := as.userRepo.UpdateLastLogin(ctx, tx, u.ID, now); err != nil {
			return err
		}
		u.LastLogin = &now
		result, err = as.issue(u)
		return err
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) && ae.Status == 401 {
			as.log.Info("Login rejected", "reason", ae.Code)
		}
		return nil, err
	}
	as.log.Info("User logged in", "user_id", result.User.ID)
	return result, nil
}

func (as *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, ok := as.issuer.VerifyRefreshToken(refreshToken)
	if !ok {
		return nil, errInvalidToken
	}
	u, err := as.userRepo.GetByID(ctx, nil, userID)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, errInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, errAccountInactive
	}
	return as.issue(u)
}

func (as *authService) Me(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	u, err := as.userRepo.GetByID(ctx, nil, userID)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("user")
	}
	return u, err
}

func (as *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	fe := fieldErrors{}
	fe.required("currentPassword", current)
	if len(next) < MinPasswordLength {
		fe.add("newPassword", "password must be at least 6 characters")
	}
	if err := fe.err(); err != nil {
		return err
	}

	var updated *types.User
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := as.userRepo.GetByID(ctx, tx, userID)
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("user")
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(current)) != nil {
			return apierr.BadRequest("invalid_password", "current password is incorrect")
		}
		hash, err := HashPassword(next)
		if err != nil {
			return apierr.Internal(err)
		}
		if err := as.userRepo.UpdatePassword(ctx, tx, u.ID, hash); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return err
	}
	as.log.Info("Password changed", "user_id", userID)
	as.mailer.SendPasswordChanged(ctx, updated)
	return nil
}

func (as *authService) Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error) {
	userID, ok := as.issuer.VerifyAccessToken(accessToken)
	if !ok {
		return uuid.Nil, errInvalidToken
	}
	u, err := as.userRepo.GetByID(ctx, nil, userID)
	if errors.Is(err, apierr.ErrNotFound) {
		return uuid.Nil, errInvalidToken
	}
	if err != nil {
		return uuid.Nil, err
	}
	if !u.IsActive() {
		return uuid.Nil, errAccountInactive
	}
	return u.ID, nil
}

func (as *authService) issue(u *types.User) (*AuthResult, error) {
	pair, err := as.issuer.IssuePair(u.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &AuthResult{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn / time.Second),
		User:         u,
	}, nil
}
