// Package credentials persists the logged-in identity to
// ~/.filen-cli/credentials.json. It is kept thin: one struct, one load,
// one save.
package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/CrispStrobe/filen-dart/internal/model"
)

// ErrNotFound is returned by Load when no credentials file exists.
var ErrNotFound = errors.New("credentials: not found")

// Stored is the on-disk shape: master keys are pipe-joined, oldest to
// newest.
type Stored struct {
	Email          string `json:"email"`
	APIKey         string `json:"apiKey"`
	MasterKeysJoin string `json:"masterKeys"`
	BaseFolderUUID string `json:"baseFolderUUID"`
	UserID         string `json:"userId"`
}

// Dir returns ~/.filen-cli (%USERPROFILE%\.filen-cli on Windows).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".filen-cli"), nil
}

// Path returns the full path to credentials.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.json"), nil
}

// Load reads and parses the credentials file into an Identity. Returns
// ErrNotFound if the file is absent, or if apiKey is empty once parsed.
func Load() (model.Identity, error) {
	path, err := Path()
	if err != nil {
		return model.Identity{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Identity{}, ErrNotFound
		}
		return model.Identity{}, err
	}
	var s Stored
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Identity{}, err
	}
	if s.APIKey == "" {
		return model.Identity{}, ErrNotFound
	}
	return model.Identity{
		Email:        s.Email,
		APIKey:       s.APIKey,
		MasterKeys:   splitKeys(s.MasterKeysJoin),
		BaseFolderID: s.BaseFolderUUID,
		UserID:       s.UserID,
	}, nil
}

// Save writes id to the credentials file, creating ~/.filen-cli with
// restrictive permissions if needed.
func Save(id model.Identity) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	s := Stored{
		Email:          id.Email,
		APIKey:         id.APIKey,
		MasterKeysJoin: strings.Join(id.MasterKeys, "|"),
		BaseFolderUUID: id.BaseFolderID,
		UserID:         id.UserID,
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func splitKeys(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, "|")
}
