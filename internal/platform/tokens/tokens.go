package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	UseAccess  = "access"
	UseRefresh = "refresh"

	DefaultAccessTTL  = 7 * 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Claims carry only the user id (subject), expiry and which secret signed them.
type Claims struct {
	Use string `json:"use"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Issuer struct {
	cfg Config
	now func() time.Time
}

type Option func(*Issuer)

// WithClock overrides time.Now, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("tokens: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("tokens: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	i := &Issuer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) AccessTTL() time.Duration { return i.cfg.AccessTTL }

func (i *Issuer) IssueAccessToken(userID uuid.UUID) (string, error) {
	return i.sign(userID, UseAccess, i.cfg.AccessTTL, i.cfg.AccessSecret)
}

func (i *Issuer) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return i.sign(userID, UseRefresh, i.cfg.RefreshTTL, i.cfg.RefreshSecret)
}

func (i *Issuer) IssuePair(userID uuid.UUID) (Pair, error) {
	access, err := i.IssueAccessToken(userID)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.IssueRefreshToken(userID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh, ExpiresIn: i.cfg.AccessTTL}, nil
}

// VerifyAccessToken never returns an error: any failure yields (uuid.Nil, false).
func (i *Issuer) VerifyAccessToken(token string) (uuid.UUID, bool) {
	return i.verify(token, UseAccess, i.cfg.AccessSecret)
}

func (i *Issuer) VerifyRefreshToken(token string) (uuid.UUID, bool) {
	return i.verify(token, UseRefresh, i.cfg.RefreshSecret)
}

func (i *Issuer) sign(userID uuid.UUID, use string, ttl time.Duration, secret string) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("tokens: user id required")
	}
	now := i.now()
	claims := Claims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", use, err)
	}
	return signed, nil
}

func (i *Issuer) verify(token, use, secret string) (uuid.UUID, bool) {
	if token == "" {
		return uuid.Nil, false
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return uuid.Nil, false
	}
	if claims.Use != use {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
