package batch

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// State is the durable shape of one batch invocation.
type State struct {
	OperationType    Kind    `json:"operationType"`
	TargetRemotePath string  `json:"targetRemotePath"`
	LocalDestination *string `json:"localDestination,omitempty"`
	Tasks            []Task  `json:"tasks"`
}

// ID computes the deterministic batch identifier: the first 16 hex
// characters of SHA-1(operation + "-" + sources joined by "|" + "-" + target).
func ID(kind Kind, sources []string, target string) string {
	joined := strings.Join(sources, "|")
	sum := sha1.Sum([]byte(string(kind) + "-" + joined + "-" + target))
	return hex.EncodeToString(sum[:])[:16]
}

// Dir returns ~/.filen-cli/batch_states.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".filen-cli", "batch_states"), nil
}

// Path returns the on-disk path for batch id.
func Path(id string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("batch_state_%s.json", id)), nil
}

// Load reads a batch's persisted state, if any. A missing file is not an
// error: the caller should treat it as "start fresh" (returns ok=false).
func Load(id string) (State, bool, error) {
	path, err := Path(id)
	if err != nil {
		return State{}, false, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, false, err
	}
	return s, true, nil
}

// Save persists state for batch id, creating the batch_states directory if
// needed. Persistence failures are best-effort from the caller's
// perspective, logged and otherwise ignored, but Save itself still returns
// the error so the caller can decide how to log it.
func Save(id string, s State) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	path, err := Path(id)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Delete removes a batch's persisted state, deleted on successful batch
// completion. Deleting an already-absent file is not an error.
func Delete(id string) error {
	path, err := Path(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
