package actions

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("archive"), 0644))
}

func TestPruneBackups(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	dir := t.TempDir()
	writeArchive(t, dir, "n8n-backup-2026-08-28.tar.gz") // 1 day old
	writeArchive(t, dir, "n8n-backup-2026-07-30.tar.gz") // exactly 30 days
	writeArchive(t, dir, "n8n-backup-2026-07-29.tar.gz") // 31 days, expired
	writeArchive(t, dir, "n8n-backup-2026-01-01.tar.gz") // long expired
	writeArchive(t, dir, "unrelated.tar.gz")             // never touched
	writeArchive(t, dir, "n8n-backup-not-a-date.tar.gz") // never touched

	pruned, err := PruneBackups(dir, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"n8n-backup-2026-07-29.tar.gz",
		"n8n-backup-2026-01-01.tar.gz",
	}, pruned)

	remaining, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, entry := range remaining {
		names = append(names, entry.Name())
	}
	assert.ElementsMatch(t, []string{
		"n8n-backup-2026-08-28.tar.gz",
		"n8n-backup-2026-07-30.tar.gz",
		"unrelated.tar.gz",
		"n8n-backup-not-a-date.tar.gz",
	}, names)
}

func TestPruneBackupsEmptyDir(t *testing.T) {
	pruned, err := PruneBackups(t.TempDir(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, pruned)
}

func TestPruneBackupsMissingDir(t *testing.T) {
	_, err := PruneBackups(filepath.Join(t.TempDir(), "absent"), time.Now())
	assert.Error(t, err)
}

func TestArchiveDirMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := archiveDir(filepath.Join(dir, "does-not-exist"), filepath.Join(dir, "out.tar.gz"), true)
	assert.Error(t, err)
}

func TestArchiveDirRoundTrip(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(source, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "nested", "workflow.json"), []byte(`{"id":1}`), 0644))

	archive := filepath.Join(t.TempDir(), "n8n_data.tar.gz")
	require.NoError(t, archiveDir(source, archive, false))

	dest := t.TempDir()
	require.NoError(t, extractTarGz(archive, dest))

	content, err := os.ReadFile(filepath.Join(dest, "nested", "workflow.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(content))
}

func TestBackupArchiveName(t *testing.T) {
	assert.Equal(t, "n8n-backup-2026-08-29.tar.gz", BackupArchiveName("2026-08-29"))
}

func TestLatestBackup(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, "n8n-backup-2026-03-01.tar.gz")
	writeArchive(t, dir, "n8n-backup-2026-08-10.tar.gz")
	writeArchive(t, dir, "n8n-backup-2025-12-31.tar.gz")
	writeArchive(t, dir, "unrelated.tar.gz")

	latest, ok := latestBackup(dir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "n8n-backup-2026-08-10.tar.gz"), latest)
}

func TestLatestBackupEmpty(t *testing.T) {
	_, ok := latestBackup(t.TempDir())
	assert.False(t, ok)
}
