package files

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearshare/internal/domain"
)

func TestSizeIsLookedUpEveryTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/a.txt", []byte("hello"), 0o644))
	ref := domain.FileRef("/tmp/a.txt")

	assert.Equal(t, int64(5), DisplaySize(fs, ref))

	require.NoError(t, afero.WriteFile(fs, "/tmp/a.txt", []byte("hello world"), 0o644))
	assert.Equal(t, int64(11), DisplaySize(fs, ref))

	require.NoError(t, fs.Remove("/tmp/a.txt"))
	assert.Equal(t, UnknownSize, DisplaySize(fs, ref))
}

func TestSizeReportsUnavailable(t *testing.T) {
	fs := afero.NewMemMapFs()
	size, err := Size(fs, domain.FileRef("/missing"))
	require.ErrorIs(t, err, ErrResourceUnavailable)
	assert.Equal(t, UnknownSize, size)

	require.NoError(t, fs.MkdirAll("/dir", 0o755))
	_, err = Size(fs, domain.FileRef("/dir"))
	require.ErrorIs(t, err, ErrNotRegular)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "? B", HumanSize(UnknownSize))
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "1023 B", HumanSize(1023))
	assert.Equal(t, "1.0 KiB", HumanSize(1024))
	assert.Equal(t, "1.5 MiB", HumanSize(1536*1024))
}

func TestName(t *testing.T) {
	assert.Equal(t, "photo.jpg", Name(domain.FileRef("/home/me/photo.jpg")))
}

func TestExpand(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/one.txt", []byte("1"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/two.txt", []byte("22"), 0o644))
	require.NoError(t, fs.MkdirAll("/data/sub", 0o755))

	refs, err := Expand(fs, []string{"/data/one.txt", " ", "/data/two.txt"})
	require.NoError(t, err)
	assert.Equal(t, []domain.FileRef{"/data/one.txt", "/data/two.txt"}, refs)

	refs, err = Expand(fs, []string{"/data/one.txt", "/data/sub", "/data/nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/data/sub")
	assert.Contains(t, err.Error(), "/data/nope")
	assert.Equal(t, []domain.FileRef{"/data/one.txt"}, refs)
}
