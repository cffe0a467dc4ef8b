// ABOUTME: Tests for session persistence
// ABOUTME: Covers save, load, clear and the token env override

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanks009/feedback-client/models"
)

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("FEEDBACK_TOKEN", "")
	path := filepath.Join(t.TempDir(), "feedback", "session.json")

	s := &Session{
		Token: "tok-123",
		User:  models.User{ID: 9, Email: "m@x.com", Role: models.RoleManager},
	}
	require.NoError(t, SaveTo(path, s))

	_, err := ulid.Parse(s.DeviceID)
	require.NoError(t, err, "device id should be a ULID")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", loaded.Token)
	assert.True(t, loaded.User.IsManager())
	assert.Equal(t, s.DeviceID, loaded.DeviceID)
}

func TestLoadMissingIsNotSignedIn(t *testing.T) {
	t.Setenv("FEEDBACK_TOKEN", "")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "session.json"))
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestTokenOverride(t *testing.T) {
	t.Setenv("FEEDBACK_TOKEN", "env-token")

	s, err := LoadFrom(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", s.Token)
}

func TestClear(t *testing.T) {
	t.Setenv("FEEDBACK_TOKEN", "")
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, SaveTo(path, &Session{Token: "x"}))

	require.NoError(t, ClearAt(path))
	require.NoError(t, ClearAt(path), "clearing twice is fine")

	_, err := LoadFrom(path)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestPathIsUnderXDGData(t *testing.T) {
	assert.Equal(t, "session.json", filepath.Base(Path()))
	assert.Equal(t, "feedback", filepath.Base(filepath.Dir(Path())))
}
