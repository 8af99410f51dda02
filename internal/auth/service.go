package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharmila-j/church-checkin-gateway/config"
	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrInvalidPIN         = errors.New("invalid station PIN")
	ErrPINNotConfigured   = errors.New("station PIN is not configured")
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Operator is the cached profile of a signed-in operator.
type Operator struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type Service interface {
	Login(ctx context.Context, username, password string) (*Operator, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, username string) error
	UnlockStation(pin string) error
	Profile(ctx context.Context, username string) (*Operator, error)
}

type service struct {
	client *api.Client

	accessSecret   string
	refreshSecret  string
	accessTTL      time.Duration
	refreshTTL     time.Duration
	stationPINHash string
}

func NewService(client *api.Client, cfg *config.Config) Service {
	accessTTL := time.Duration(cfg.JWTAccessTTLHours) * time.Hour
	if accessTTL <= 0 {
		accessTTL = 1 * time.Hour
	}
	refreshTTL := time.Duration(cfg.JWTRefreshTTLHours) * time.Hour
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &service{
		client:         client,
		accessSecret:   cfg.JWTAccessSecret,
		refreshSecret:  cfg.JWTRefreshSecret,
		accessTTL:      accessTTL,
		refreshTTL:     refreshTTL,
		stationPINHash: cfg.StationPINHash,
	}
}

// =============================
// Login
// =============================

// Login authenticates against the upstream ChMS and issues the
// gateway's own token pair. The upstream never sees gateway tokens;
// the gateway holds one API token for its upstream calls regardless
// of which operator is signed in.
func (s *service) Login(ctx context.Context, username, password string) (*Operator, *TokenPair, error) {
	user, err := s.client.Login(ctx, username, password)
	if err != nil {
		if api.IsAuthError(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	operator := &Operator{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}

	access, err := s.generateAccessToken(operator)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.generateRefreshToken(operator)
	if err != nil {
		return nil, nil, err
	}

	if err := utils.StoreRefreshToken(ctx, operator.Username, refresh, s.refreshTTL); err != nil {
		return nil, nil, err
	}
	// Profile caching is convenience, not correctness; ignore failure.
	_ = utils.CacheProfile(ctx, operator.Username, operator)

	return operator, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) generateAccessToken(op *Operator) (string, error) {
	claims := jwt.MapClaims{
		"username": op.Username,
		"role":     op.Role,
		"exp":      time.Now().Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.accessSecret))
}

func (s *service) generateRefreshToken(op *Operator) (string, error) {
	claims := jwt.MapClaims{
		"username": op.Username,
		"role":     op.Role,
		"exp":      time.Now().Add(s.refreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.refreshSecret))
}

// =============================
// Refresh
// =============================

// Refresh trades a valid refresh token for a new access token. The
// token must still match the Redis session, so logout revokes it.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidRefresh
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidRefresh
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if username == "" {
		return "", ErrInvalidRefresh
	}

	valid, err := utils.ValidateRefreshToken(ctx, username, refreshToken)
	if err != nil || !valid {
		return "", ErrInvalidRefresh
	}

	return s.generateAccessToken(&Operator{Username: username, Role: role})
}

// =============================
// Logout & kiosk unlock
// =============================

func (s *service) Logout(ctx context.Context, username string) error {
	if err := utils.RevokeSession(ctx, username); err != nil {
		return err
	}
	return utils.InvalidateProfile(ctx, username)
}

// UnlockStation checks the kiosk PIN against the configured bcrypt
// hash. Stations lock their screen between services; the PIN unlocks
// without a full re-login.
func (s *service) UnlockStation(pin string) error {
	if s.stationPINHash == "" {
		return ErrPINNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.stationPINHash), []byte(pin)); err != nil {
		return ErrInvalidPIN
	}
	return nil
}

// Profile returns the cached operator profile.
func (s *service) Profile(ctx context.Context, username string) (*Operator, error) {
	var op Operator
	if err := utils.GetCachedProfile(ctx, username, &op); err != nil {
		return nil, err
	}
	return &op, nil
}
