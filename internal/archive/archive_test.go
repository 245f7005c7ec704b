package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/archive/mocks"
)

func TestExpandNotAnArchive(t *testing.T) {
	var scratch string
	m := new(mocks.MockTool)
	m.On("Test", mock.Anything).Run(func(args mock.Arguments) {
		scratch = args.String(0)
	}).Return(false)

	e := NewExpander(m)

	isArchive, members, err := e.Expand([]byte("plain bytes"))

	require.NoError(t, err)
	assert.False(t, isArchive)
	assert.Empty(t, members)

	// Tool saw the payload on disk, and the scratch dir is gone now.
	require.NotEmpty(t, scratch)
	_, statErr := os.Stat(filepath.Dir(scratch))
	assert.True(t, os.IsNotExist(statErr))
	m.AssertExpectations(t)
}

func TestExpandSuccess(t *testing.T) {
	var scratch string
	m := new(mocks.MockTool)
	m.On("Test", mock.Anything).Run(func(args mock.Arguments) {
		scratch = args.String(0)
	}).Return(true)
	m.On("Extract", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		outDir := args.String(1)
		require.NoError(t, os.WriteFile(filepath.Join(outDir, "inner.txt"), []byte("inner one"), 0o600))
		require.NoError(t, os.Mkdir(filepath.Join(outDir, "sub"), 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(outDir, "sub", "deep.bin"), []byte("inner two"), 0o600))
	}).Return(nil)

	e := NewExpander(m)

	isArchive, members, err := e.Expand([]byte("pretend archive"))

	require.NoError(t, err)
	assert.True(t, isArchive)
	require.Len(t, members, 2)

	byName := map[string][]byte{}
	for _, mem := range members {
		byName[mem.Filename] = mem.Data
	}
	// Directory structure is flattened to leaf filenames.
	assert.Equal(t, []byte("inner one"), byName["inner.txt"])
	assert.Equal(t, []byte("inner two"), byName["deep.bin"])

	_, statErr := os.Stat(filepath.Dir(scratch))
	assert.True(t, os.IsNotExist(statErr))
	m.AssertExpectations(t)
}

func TestExpandExtractionFailure(t *testing.T) {
	var scratch string
	m := new(mocks.MockTool)
	m.On("Test", mock.Anything).Run(func(args mock.Arguments) {
		scratch = args.String(0)
	}).Return(true)
	m.On("Extract", mock.Anything, mock.Anything).Return(assert.AnError)

	e := NewExpander(m)

	_, _, err := e.Expand([]byte("corrupt archive"))

	assert.ErrorIs(t, err, ErrExtraction)

	// Partial scratch state is cleaned up before the error surfaces.
	_, statErr := os.Stat(filepath.Dir(scratch))
	assert.True(t, os.IsNotExist(statErr))
	m.AssertExpectations(t)
}

func TestArchiverTool(t *testing.T) {
	dir := t.TempDir()

	// A real zip with two entries, saved without a .zip extension so only
	// header detection can identify it.
	zipPath := filepath.Join(dir, "sample.bin")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{"a.txt": "alpha", "b.txt": "beta"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	tool := ArchiverTool{}

	t.Run("test detects zip by header", func(t *testing.T) {
		assert.True(t, tool.Test(zipPath))
	})

	t.Run("test rejects non-archive", func(t *testing.T) {
		plain := filepath.Join(dir, "plain.txt")
		require.NoError(t, os.WriteFile(plain, []byte("not an archive"), 0o600))
		assert.False(t, tool.Test(plain))
	})

	t.Run("extract unpacks members", func(t *testing.T) {
		outDir := filepath.Join(dir, "out")
		require.NoError(t, os.Mkdir(outDir, 0o700))
		require.NoError(t, tool.Extract(zipPath, outDir))

		data, err := os.ReadFile(filepath.Join(outDir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "alpha", string(data))
	})
}

func TestExpandWithRealZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "payload")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	names := []string{"one.txt", "two.txt", "three.txt"}
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(zipPath)
	require.NoError(t, err)

	e := NewExpander(ArchiverTool{})
	isArchive, members, err := e.Expand(data)

	require.NoError(t, err)
	assert.True(t, isArchive)
	assert.Len(t, members, len(names))
}
