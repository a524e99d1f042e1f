package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRememberUser(t *testing.T) {
	dir := t.TempDir()
	orig := Dir
	Dir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { Dir = orig })

	p, err := Load()
	require.NoError(t, err)
	require.Empty(t, p.LastUsername)

	require.NoError(t, RememberUser("rita"))
	p, err = Load()
	require.NoError(t, err)
	require.Equal(t, "rita", p.LastUsername)

	require.NoError(t, os.WriteFile(filepath.Join(dir, prefsFile), []byte("{"), 0o600))
	_, err = Load()
	require.Error(t, err)
	require.NoError(t, RememberUser("carl"))
	p, err = Load()
	require.NoError(t, err)
	require.Equal(t, "carl", p.LastUsername)
}
