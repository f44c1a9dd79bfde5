package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("SC_PROTOCOL_POLL_SECONDS", "")
	t.Setenv("SC_ACCOUNT_POLL_SECONDS", "")
	t.Setenv("SC_ADDRESS", "")
	t.Setenv("NEXT_PUBLIC_E2E_ADDRESS", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	env, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	require.Nil(t, env)

	env, err = LoadEnv("")
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, env.ProtocolInterval)
	require.Equal(t, 5*time.Second, env.AccountInterval)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", env.WatchAddress)
}

func TestLoadEnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	t.Setenv("SC_ACCOUNT_POLL_SECONDS", "2")
	t.Setenv("SC_PROTOCOL_POLL_SECONDS", "")
	os.Unsetenv("SC_PROTOCOL_POLL_SECONDS")

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("SC_ACCOUNT_POLL_SECONDS=30\nSC_PROTOCOL_POLL_SECONDS=20\n"), 0o600))

	env, err := LoadEnv(file)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, env.AccountInterval)
	require.Equal(t, 20*time.Second, env.ProtocolInterval)
}

func TestLoadEnvRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("SC_PROTOCOL_POLL_SECONDS", "0")
	_, err := LoadEnv("")
	require.Error(t, err)
}

func TestLoadEnvDefaultFile(t *testing.T) {
	t.Setenv("SC_PROTOCOL_POLL_SECONDS", "")
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := LoadEnv("")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD$KEY=1\n"), 0o600))
	_, err = LoadEnv("")
	require.Error(t, err)
	require.Contains(t, err.Error(), ".env")
}
