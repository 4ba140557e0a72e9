package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires a token secret", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth config")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_SECRET", "c2VjcmV0LXNlY3JldC1zZWNyZXQtc2VjcmV0LXNlY3JldA==")
		t.Setenv("APP_PORT", "")
		t.Setenv("AUTH_SEED_USERS", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
		assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
		assert.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
		assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow())
		require.Len(t, cfg.Auth.SeedUsers, 2)
		assert.Equal(t, []string{"USER", "ADMIN"}, cfg.Auth.SeedUsers[1].Roles)
	})

	t.Run("rejects out of range bcrypt cost", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_SECRET", "c2VjcmV0")
		t.Setenv("AUTH_BCRYPT_COST", "64")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestParseSeedUsers(t *testing.T) {
	seeds, err := ParseSeedUsers(" alice:pw:USER ; bob:pw2:USER, ADMIN ;")
	require.NoError(t, err)
	assert.Equal(t, []SeedUser{
		{Username: "alice", Password: "pw", Roles: []string{"USER"}},
		{Username: "bob", Password: "pw2", Roles: []string{"USER", "ADMIN"}},
	}, seeds)

	_, err = ParseSeedUsers("alice:pw")
	assert.Error(t, err)

	_, err = ParseSeedUsers("alice:pw:")
	assert.Error(t, err)

	seeds, err = ParseSeedUsers("")
	require.NoError(t, err)
	assert.Empty(t, seeds)
}
