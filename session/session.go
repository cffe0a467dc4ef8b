// ABOUTME: Signed-in user session storage at XDG paths
// ABOUTME: Holds bearer token, user identity/role and a ULID device ID

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/oklog/ulid/v2"

	"github.com/amanks009/feedback-client/models"
)

// ErrNotSignedIn is returned when no session is stored and no token override is set.
var ErrNotSignedIn = errors.New("not signed in; run 'feedback login'")

// Session is the locally stored authentication context.
type Session struct {
	Token    string      `json:"token"`
	User     models.User `json:"user"`
	DeviceID string      `json:"device_id"`
	SignedIn time.Time   `json:"signed_in"`
}

// Path returns the XDG-compliant session file location.
func Path() string {
	return filepath.Join(xdg.DataHome, "feedback", "session.json")
}

// Valid reports whether the session can authenticate requests.
func (s *Session) Valid() bool {
	return s != nil && s.Token != ""
}

// Load reads the session at Path. FEEDBACK_TOKEN overrides the stored token.
func Load() (*Session, error) {
	return LoadFrom(Path())
}

// LoadFrom is Load with an explicit path.
func LoadFrom(path string) (*Session, error) {
	s := &Session{}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		if err := json.NewDecoder(f).Decode(s); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}

	if token := os.Getenv("FEEDBACK_TOKEN"); token != "" {
		s.Token = token
	}

	if !s.Valid() {
		return nil, ErrNotSignedIn
	}
	return s, nil
}

// Save writes the session to Path with restricted permissions.
func Save(s *Session) error {
	return SaveTo(Path(), s)
}

// SaveTo is Save with an explicit path. A device ID is generated if missing.
func SaveTo(path string, s *Session) error {
	if s.DeviceID == "" {
		s.DeviceID = NewDeviceID()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return nil
}

// Clear removes the stored session. A missing file is not an error.
func Clear() error {
	return ClearAt(Path())
}

func ClearAt(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// NewDeviceID generates a ULID identifying this client install.
func NewDeviceID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
