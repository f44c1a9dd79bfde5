package account

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoKey is returned when neither a key file nor a private key variable
// is available.
var ErrNoKey = errors.New("no signing key configured")

// PrivateKeyVariables are checked in order for a hex encoded private key.
var PrivateKeyVariables = []string{"PRIVATE_KEY", "DEPLOYER_PRIVATE_KEY"}

// PasswordReader prompts for a keystore password. It is swapped in tests.
var PasswordReader = func(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)
	pwd, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func NewKeystoreSigner(file string, password string) (*KeySigner, error) {
	_, key, err := PrivateKeyFromKeystore(file, password)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(key), nil
}

func NewHexSigner(hex string) (*KeySigner, error) {
	_, key, err := PrivateKeyFromHex(hex)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(key), nil
}

// LoadSigner resolves the signing key. A keystore file wins over the
// environment; its password comes from KEYSTORE_PASSWORD or a terminal
// prompt.
func LoadSigner(keyFile string) (*KeySigner, error) {
	if keyFile != "" {
		pwd, ok := os.LookupEnv("KEYSTORE_PASSWORD")
		if !ok {
			var err error
			pwd, err = PasswordReader(fmt.Sprintf("Password for %s: ", keyFile))
			if err != nil {
				return nil, fmt.Errorf("reading password: %w", err)
			}
		}
		return NewKeystoreSigner(keyFile, pwd)
	}
	for _, name := range PrivateKeyVariables {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			s, err := NewHexSigner(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return s, nil
		}
	}
	return nil, ErrNoKey
}
