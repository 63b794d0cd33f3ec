package actions

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRestoreDate(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2026-08-29", true},
		{"2024-02-29", true},
		{"", false},
		{"2026-13-01", false},
		{"2025-02-29", false},
		{"29-08-2026", false},
		{"2026-08-29T00:00:00Z", false},
		{"yesterday", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidRestoreDate(tt.date))
		})
	}
}

// An invalid or unmatched date must leave the system untouched: the
// handler errors out before any destructive action.
func TestRestoreRejectsBeforeTouchingData(t *testing.T) {
	dataDir := t.TempDir()
	cfg := &domain.InstallConfig{
		StackDir:  dataDir,
		BackupDir: filepath.Join(dataDir, "backups"),
	}

	canary := filepath.Join(cfg.DataDir(), "canary")
	require.NoError(t, os.MkdirAll(cfg.DataDir(), 0755))
	require.NoError(t, os.WriteFile(canary, []byte("alive"), 0644))

	t.Run("malformed date", func(t *testing.T) {
		err := RestoreActionHandler(cfg, "not-a-date", true)
		assert.Error(t, err)
	})

	t.Run("no backup for the date", func(t *testing.T) {
		err := RestoreActionHandler(cfg, "2026-01-15", true)
		assert.Error(t, err)
	})

	content, err := os.ReadFile(canary)
	require.NoError(t, err)
	assert.Equal(t, "alive", string(content))
}

func writeTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzipWriter)
	for name, content := range entries {
		require.NoError(t, tarWriter.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
		}))
		_, err := tarWriter.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzipWriter.Close())
}

func TestExtractTarGz(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bundle.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"db-2026-08-29.sql":    "SELECT 1;",
		"nested/file.txt":      "nested",
		"../escape-attempt":    "must not be written",
		"/abs/escape-attempt2": "must not be written",
	})

	dest := t.TempDir()
	require.NoError(t, extractTarGz(archive, dest))

	content, err := os.ReadFile(filepath.Join(dest, "db-2026-08-29.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", string(content))

	content, err = os.ReadFile(filepath.Join(dest, "nested", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested", string(content))

	_, err = os.Stat(filepath.Join(filepath.Dir(dest), "escape-attempt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractTarGzRestoresLinks(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "links.tar.gz")

	file, err := os.Create(archive)
	require.NoError(t, err)
	gzipWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzipWriter)

	content := "shared settings"
	require.NoError(t, tarWriter.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     "n8n_data/config",
		Mode:     0644,
		Size:     int64(len(content)),
	}))
	_, err = tarWriter.Write([]byte(content))
	require.NoError(t, err)

	require.NoError(t, tarWriter.WriteHeader(&tar.Header{
		Typeflag: tar.TypeSymlink,
		Name:     "n8n_data/config.link",
		Linkname: "config",
		Mode:     0777,
	}))
	require.NoError(t, tarWriter.WriteHeader(&tar.Header{
		Typeflag: tar.TypeLink,
		Name:     "n8n_data/config.hard",
		Linkname: "n8n_data/config",
		Mode:     0644,
	}))

	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzipWriter.Close())
	require.NoError(t, file.Close())

	dest := t.TempDir()
	require.NoError(t, extractTarGz(archive, dest))

	linkTarget, err := os.Readlink(filepath.Join(dest, "n8n_data", "config.link"))
	require.NoError(t, err)
	assert.Equal(t, "config", linkTarget)

	// the symlink resolves through to the real content
	through, err := os.ReadFile(filepath.Join(dest, "n8n_data", "config.link"))
	require.NoError(t, err)
	assert.Equal(t, content, string(through))

	hard, err := os.ReadFile(filepath.Join(dest, "n8n_data", "config.hard"))
	require.NoError(t, err)
	assert.Equal(t, content, string(hard))
}

func TestExtractTarGzMissingArchive(t *testing.T) {
	err := extractTarGz(filepath.Join(t.TempDir(), "absent.tar.gz"), t.TempDir())
	assert.Error(t, err)
}
