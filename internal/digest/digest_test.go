package digest

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumKnownValues(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"hello", "5d41402abc4b2a76b9719d911017c592"},
		{"The quick brown fox jumps over the lazy dog", "9e107d9d372bb6826bd81d3542a419d6"},
	}

	for _, tt := range tests {
		t.Run(strconv.Quote(tt.input), func(t *testing.T) {
			got, err := Sum([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, Valid(got))
		})
	}
}

func TestPathKeysDistinct(t *testing.T) {
	paths := []string{
		"/",
		"/a",
		"/a/",
		"/a/b",
		"/a/b.txt",
		"/a/b.tx",
		"/A/b.txt",
		"/home/user/project/main.go",
		"/home/user/project/main.go.orig",
		"/home/user/project/.fim",
	}
	for i := 0; i < 500; i++ {
		paths = append(paths, "/tree/dir"+strconv.Itoa(i%17)+"/file"+strconv.Itoa(i))
	}

	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		key, err := Path(p)
		require.NoError(t, err)
		require.Len(t, key, Size)
		if other, ok := seen[key]; ok {
			t.Fatalf("key collision between %q and %q", p, other)
		}
		seen[key] = p
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("content", func(t *testing.T) {
		path := filepath.Join(dir, "hello.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

		got, err := File(path)
		require.NoError(t, err)
		assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", got)
	})

	t.Run("empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		got, err := File(path)
		require.NoError(t, err)
		assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", got)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := File(filepath.Join(dir, "missing"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("0123456789abcdef0123456789abcdef"))
	assert.False(t, Valid("0123456789ABCDEF0123456789abcdef"))
	assert.False(t, Valid("0123456789abcdef"))
	assert.False(t, Valid("0123456789abcdef0123456789abcdeg"))
	assert.False(t, Valid(""))
}
