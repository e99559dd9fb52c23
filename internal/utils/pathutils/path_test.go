package pathutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsolutePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/backups/repo", filepath.Join(home, "backups/repo")},
		{"/data/repo", "/data/repo"},
		{"relative/repo", "relative/repo"},
		{"~user/repo", "~user/repo"},
	}
	for _, tt := range tests {
		got, err := ToAbsolutePath(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
