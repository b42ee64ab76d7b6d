package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	in := Profile{UserID: "u-1", Name: "Maya", City: "Berlin", Track: "career", Voice: "nova"}
	require.NoError(t, s.Save(in))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in, *got)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadCorruptTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadMissingUserIDTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte(`{"name":"Maya"}`), 0o600))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClear(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save(Profile{UserID: "u-1", Name: "Maya"}))
	require.NoError(t, s.Clear())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Clear())
}
