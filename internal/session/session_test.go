package session

import (
	"context"
	"f1league/internal/components/telemetry"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeCookies(t testing.TB, path, content string, modTime time.Time) {
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestFileHeader(t *testing.T) {
	file := File{RequestCookies: map[string]string{
		"z-last":         "3",
		"login-session":  "abc",
		"F1_FANTASY_007": "x",
	}}
	require.Equal(t, "F1_FANTASY_007=x; login-session=abc; z-last=3", file.Header())
	require.Equal(t, "", File{}.Header())
}

func TestProviderCookie(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	start := time.Unix(1700000000, 0)
	writeCookies(t, path, `{"Request Cookies": {"b": "2", "a": "1"}}`, start)

	provider := NewProvider(path, telemetry.NewRecorder())
	ctx := context.Background()

	header, err := provider.Cookie(ctx)
	require.NoError(t, err)
	require.Equal(t, "a=1; b=2", header)

	// a newer file is picked up without an explicit refresh
	writeCookies(t, path, `{"Request Cookies": {"a": "9"}}`, start.Add(time.Minute))
	header, err = provider.Cookie(ctx)
	require.NoError(t, err)
	require.Equal(t, "a=9", header)
}

func TestProviderRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	start := time.Unix(1700000000, 0)
	writeCookies(t, path, `{"Request Cookies": {"a": "1"}}`, start)

	provider := NewProvider(path, telemetry.NewRecorder())
	ctx := context.Background()
	_, err := provider.Cookie(ctx)
	require.NoError(t, err)

	// same modification time, only Refresh sees the new content
	writeCookies(t, path, `{"Request Cookies": {"a": "2"}}`, start)
	header, err := provider.Cookie(ctx)
	require.NoError(t, err)
	require.Equal(t, "a=1", header)

	require.NoError(t, provider.Refresh(ctx))
	header, err = provider.Cookie(ctx)
	require.NoError(t, err)
	require.Equal(t, "a=2", header)
}

func TestProviderFailures(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	rec := telemetry.NewRecorder()
	missing := NewProvider(filepath.Join(dir, "missing.json"), rec)
	_, err := missing.Cookie(ctx)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, []string{"session: provider.read"}, rec.BrokenIds())

	empty := filepath.Join(dir, "empty.json")
	writeCookies(t, empty, `{"Request Cookies": {}}`, time.Unix(1700000000, 0))
	_, err = NewProvider(empty, telemetry.NewRecorder()).Cookie(ctx)
	require.ErrorIs(t, err, ErrNoCredentials)

	garbage := filepath.Join(dir, "garbage.json")
	writeCookies(t, garbage, `not json`, time.Unix(1700000000, 0))
	require.Error(t, NewProvider(garbage, telemetry.NewRecorder()).Refresh(ctx))
}
