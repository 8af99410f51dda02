package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharmila-j/church-checkin-gateway/config"
)

func TestUnlockStation(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("2468"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewService(nil, &config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		StationPINHash:   string(hash),
	})

	require.NoError(t, svc.UnlockStation("2468"))
	require.ErrorIs(t, svc.UnlockStation("0000"), ErrInvalidPIN)

	unconfigured := NewService(nil, &config.Config{})
	require.ErrorIs(t, unconfigured.UnlockStation("2468"), ErrPINNotConfigured)
}

func TestRefreshRejectsMalformedToken(t *testing.T) {
	svc := NewService(nil, &config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
	})

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}
