package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const pepperLength = 32

// LoadPepper loads the pepper from file, generating and persisting a new one
// when the file does not exist yet. Losing the file invalidates every stored
// hash, so it belongs on the same volume as the database.
func LoadPepper(file string) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	raw, err := os.ReadFile(file)
	switch {
	case err == nil:
		return strings.TrimSpace(string(raw)), nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}

	buf := make([]byte, pepperLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	pepper := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(file, []byte(pepper), 0600); err != nil {
		return "", err
	}
	return pepper, nil
}
