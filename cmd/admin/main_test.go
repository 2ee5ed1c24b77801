package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crux-backend/infrastructure/di"
	"crux-backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "development")

	out, err := execute(t, "token", "author-1", "--home", "home-1", "--role", "admin")
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: di.DevelopmentSecret, Issuer: "crux-auth"})
	require.NoError(t, err)
	claims, err := validator.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "author-1", claims.AuthorID())
	assert.Equal(t, "home-1", claims.HomeID)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestTokenCommand_RequiresAuthor(t *testing.T) {
	_, err := execute(t, "token")
	assert.Error(t, err)
}

func TestConfigCommand_RedactsSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret")

	out, err := execute(t, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "storage: memory")
	assert.NotContains(t, out, "super-secret")
}

func TestMigrateCommand_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "crux.db")
	path := writeConfig(t, "storage: sqlite\ndatabase_dsn: "+dsn+"\n")

	out, err := execute(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "applied 0 migration(s)")
	assert.Contains(t, out, "migration(s)")

	out, err = execute(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "applied 0 migration(s)")

	out, err = execute(t, "migrate", "status", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "applied")
}

func TestMigrateCommand_Memory(t *testing.T) {
	out, err := execute(t, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "memory storage has no schema")
}
