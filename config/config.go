// Package config holds the values bound to command line flags and the
// settings read from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Flag bound values.
var (
	Network        string
	Address        string
	KeyFile        string
	DeploymentFile string
	Yes            bool
	Verbose        bool
	LogFile        string
	LogLevel       string
	MetricsAddr    string
	MetricsPushURL string
	EnvFile        string
)

// Env is what scctl reads from the environment. Keys and node urls are
// read where they are used.
type Env struct {
	WatchAddress     string
	ProtocolInterval time.Duration
	AccountInterval  time.Duration
}

// LoadEnv loads envFile (".env" when empty) into the process environment
// without overriding variables that are already set, then reads Env. A
// missing .env file is not an error.
func LoadEnv(envFile string) (*Env, error) {
	if envFile == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	env := &Env{
		WatchAddress:     firstEnv("SC_ADDRESS", "NEXT_PUBLIC_E2E_ADDRESS"),
		ProtocolInterval: time.Duration(getEnvInt("SC_PROTOCOL_POLL_SECONDS", 10)) * time.Second,
		AccountInterval:  time.Duration(getEnvInt("SC_ACCOUNT_POLL_SECONDS", 5)) * time.Second,
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return env, nil
}

func (e *Env) Validate() error {
	if e.ProtocolInterval <= 0 {
		return fmt.Errorf("SC_PROTOCOL_POLL_SECONDS must be positive")
	}
	if e.AccountInterval <= 0 {
		return fmt.Errorf("SC_ACCOUNT_POLL_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := getEnv(k, ""); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
