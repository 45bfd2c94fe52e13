package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreateSecret returns the client secret stored at path, generating and
// writing a random one (mode 0600) when the file does not exist yet.
func LoadOrCreateSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		secret := strings.TrimSpace(string(data))
		if secret != "" {
			return secret, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read client secret: %w", err)
	}

	randomKey := make([]byte, 32)
	if _, err := rand.Read(randomKey); err != nil {
		return "", fmt.Errorf("failed to generate client secret: %w", err)
	}
	secret := hex.EncodeToString(randomKey)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create secret directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write client secret: %w", err)
	}
	slog.Warn("No client secret hash configured, generated a new client secret", "path", path)

	return secret, nil
}
