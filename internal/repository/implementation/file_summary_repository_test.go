package implementation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSummaryRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "memory")
	repo, err := NewFileSummaryRepository(dir)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := repo.Load(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, repo.Save(ctx, "123", "old"))
	require.NoError(t, repo.Save(ctx, "123", "new summary"))

	got, err = repo.Load(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "new summary", got)

	data, err := os.ReadFile(filepath.Join(dir, "summary_123.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new summary", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are renamed away")
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "abc-123_x", safeFileName("abc-123_x"))
	assert.Equal(t, "___etc_passwd", safeFileName("../etc/passwd"))
}
