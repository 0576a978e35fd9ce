package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fimerrors "fim/internal/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDigest = "5d41402abc4b2a76b9719d911017c592"

func setupTestDB(t *testing.T) *BadgerBackend {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging for tests

	db, err := badger.Open(opts)
	require.NoError(t, err)

	return NewBadgerBackend(db)
}

// backends returns a fresh manifest per backend kind.
func backends(t *testing.T) map[string]func(t *testing.T) *Manifest {
	return map[string]func(t *testing.T) *Manifest{
		"file": func(t *testing.T) *Manifest {
			dir := filepath.Join(t.TempDir(), ".fim")
			require.NoError(t, Initialize(dir))
			return New(dir, NewFileBackend(dir))
		},
		"badger": func(t *testing.T) *Manifest {
			dir := filepath.Join(t.TempDir(), ".fim")
			require.NoError(t, Initialize(dir))
			return New(dir, setupTestDB(t))
		},
	}
}

func TestRecordFormat(t *testing.T) {
	t.Run("encode", func(t *testing.T) {
		rec := Record{ModTime: 1700000000, Size: 42, Digest: testDigest}
		assert.Equal(t, "1700000000 42 "+testDigest, string(rec.Encode()))
	})

	t.Run("round trip", func(t *testing.T) {
		recs := []Record{
			{ModTime: 0, Size: 0, Digest: "d41d8cd98f00b204e9800998ecf8427e"},
			{ModTime: 1700000000, Size: 42, Digest: testDigest},
			{ModTime: -86400, Size: 1 << 40, Digest: testDigest},
		}
		for _, rec := range recs {
			got, err := ParseRecord(rec.Encode())
			require.NoError(t, err)
			assert.Equal(t, rec, got)
		}
	})

	t.Run("whitespace tolerated", func(t *testing.T) {
		got, err := ParseRecord([]byte("  12\t34 " + testDigest + "\n"))
		require.NoError(t, err)
		assert.Equal(t, Record{ModTime: 12, Size: 34, Digest: testDigest}, got)
	})

	malformed := []string{
		"",
		"12 34",
		"12 34 " + testDigest + " extra",
		"x 34 " + testDigest,
		"12 y " + testDigest,
		"12 -1 " + testDigest,
		"12 34 nothex",
		"12 34 " + strings.ToUpper(testDigest),
	}
	for _, in := range malformed {
		t.Run("malformed "+in, func(t *testing.T) {
			_, err := ParseRecord([]byte(in))
			assert.ErrorIs(t, err, ErrCorruptRecord)
		})
	}
}

func TestInitialize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".fim")
	assert.False(t, Exists(dir))

	require.NoError(t, Initialize(dir))
	assert.True(t, Exists(dir))

	err := Initialize(dir)
	require.Error(t, err)
	assert.Equal(t, fimerrors.ExitRepositoryExists, fimerrors.ExitCode(err))
}

func TestOpenRequiresStore(t *testing.T) {
	for _, backend := range []string{"file", "badger"} {
		t.Run(backend, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, ".fim")

			_, err := Open(dir, backend)
			require.Error(t, err)
			assert.True(t, fimerrors.Is(err, fimerrors.ErrorTypeRepository))

			_, statErr := os.Stat(dir)
			assert.True(t, os.IsNotExist(statErr), "Open must not create the store")
		})
	}
}

func TestOpenBadgerBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".fim")
	require.NoError(t, Initialize(dir))

	m, err := Open(dir, "badger")
	require.NoError(t, err)
	require.NoError(t, m.Write("/tree/a.txt", Record{ModTime: 1, Size: 2, Digest: testDigest}))
	require.NoError(t, m.Close())

	m, err = Open(dir, "badger")
	require.NoError(t, err)
	defer m.Close()

	got, err := m.Read("/tree/a.txt")
	require.NoError(t, err)
	assert.Equal(t, Record{ModTime: 1, Size: 2, Digest: testDigest}, got)
}

func TestManifest(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("write and read", func(t *testing.T) {
				m := open(t)
				defer m.Close()

				rec := Record{ModTime: 1700000000, Size: 5, Digest: testDigest}
				require.NoError(t, m.Write("/tree/hello.txt", rec))

				got, err := m.Read("/tree/hello.txt")
				require.NoError(t, err)
				assert.Equal(t, rec, got)
			})

			t.Run("absent", func(t *testing.T) {
				m := open(t)
				defer m.Close()

				_, err := m.Read("/tree/never.txt")
				assert.ErrorIs(t, err, ErrNotFound)
				assert.True(t, IsAbsent(err))
			})

			t.Run("overwrite keeps one record", func(t *testing.T) {
				m := open(t)
				defer m.Close()

				require.NoError(t, m.Write("/tree/a", Record{ModTime: 1, Size: 1, Digest: testDigest}))
				require.NoError(t, m.Write("/tree/a", Record{ModTime: 2, Size: 3, Digest: testDigest}))

				got, err := m.Read("/tree/a")
				require.NoError(t, err)
				assert.Equal(t, Record{ModTime: 2, Size: 3, Digest: testDigest}, got)

				n, err := m.Len()
				require.NoError(t, err)
				assert.Equal(t, 1, n)
			})

			t.Run("corrupt", func(t *testing.T) {
				m := open(t)
				defer m.Close()

				key, err := Key("/tree/bad")
				require.NoError(t, err)
				require.NoError(t, m.backend.Put(key, []byte("garbage")))

				_, err = m.Read("/tree/bad")
				assert.ErrorIs(t, err, ErrCorruptRecord)
				assert.False(t, IsAbsent(err))
			})

			t.Run("remove", func(t *testing.T) {
				m := open(t)
				defer m.Close()

				require.NoError(t, m.Write("/tree/a", Record{ModTime: 1, Size: 1, Digest: testDigest}))
				require.NoError(t, m.Remove("/tree/a"))

				_, err := m.Read("/tree/a")
				assert.ErrorIs(t, err, ErrNotFound)
				assert.ErrorIs(t, m.Remove("/tree/a"), ErrNotFound)
			})
		})
	}
}

func TestFileBackendLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".fim")
	require.NoError(t, Initialize(dir))
	m := New(dir, NewFileBackend(dir))

	rec := Record{ModTime: 1700000000, Size: 5, Digest: testDigest}
	require.NoError(t, m.Write("/tree/hello.txt", rec))

	key, err := Key("/tree/hello.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "1700000000 5 "+testDigest, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may be left behind")
	assert.Equal(t, key, entries[0].Name())
}

func TestExportImport(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			src := open(t)
			defer src.Close()

			recs := map[string]Record{
				"/tree/a":     {ModTime: 1, Size: 10, Digest: testDigest},
				"/tree/b/c":   {ModTime: 2, Size: 0, Digest: "d41d8cd98f00b204e9800998ecf8427e"},
				"/tree/b/d.x": {ModTime: 3, Size: 7, Digest: testDigest},
			}
			for p, r := range recs {
				require.NoError(t, src.Write(p, r))
			}
			key, err := Key("/tree/corrupt")
			require.NoError(t, err)
			require.NoError(t, src.backend.Put(key, []byte("1 2")))

			var buf bytes.Buffer
			stats, err := src.Export(&buf)
			require.NoError(t, err)
			assert.Equal(t, 3, stats.Records)
			assert.Equal(t, 1, stats.Skipped)

			dst := open(t)
			defer dst.Close()

			n, err := dst.Import(&buf)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			for p, r := range recs {
				got, err := dst.Read(p)
				require.NoError(t, err)
				assert.Equal(t, r, got)
			}
		})
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".fim")
	require.NoError(t, Initialize(dir))
	m := New(dir, NewFileBackend(dir))

	_, err := m.Import(strings.NewReader("this is not zstd"))
	assert.Error(t, err)
}
