package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port  int      `yaml:"port" json:"port"`
	Items []string `yaml:"items" json:"items"`
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := FileExists(filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.False(t, exists)

	path := filepath.Join(dir, "present.yml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	exists, err = FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = FileExists(dir)
	assert.Error(t, err)
}

func TestCreateFileAndRead(t *testing.T) {
	for _, fileType := range []string{FileTypeYAML, FileTypeJSON} {
		t.Run(fileType, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "file."+fileType)
			in := sample{Port: 9002, Items: []string{"a", "b"}}

			require.NoError(t, CreateFile(path, in, fileType, 0o600))

			var out sample
			require.NoError(t, FileReader(path, fileType, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestFileReader_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	var out sample
	assert.Error(t, FileReader(empty, FileTypeJSON, &out))
	assert.NoError(t, FileReader(empty, FileTypeYAML, &out))
	assert.Error(t, FileReader(empty, "toml", &out))
	assert.Error(t, FileReader(filepath.Join(dir, "missing"), FileTypeYAML, &out))

	broken := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("port: [\n"), 0o644))
	assert.Error(t, FileReader(broken, FileTypeYAML, &out))
}

func TestCreateFile_UnsupportedType(t *testing.T) {
	assert.Error(t, CreateFile(filepath.Join(t.TempDir(), "x"), sample{}, "toml", 0o644))
}
