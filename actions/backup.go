package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/steps"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/utils"

	"github.com/fatih/color"
	"github.com/jhoonb/archivex"
)

var backupArchivePattern = regexp.MustCompile(`^n8n-backup-(\d{4}-\d{2}-\d{2})\.tar\.gz$`)

// BackupArchiveName returns the dated bundle filename for a snapshot day.
func BackupArchiveName(date string) string {
	return "n8n-backup-" + date + ".tar.gz"
}

// BackupActionHandler takes a snapshot of the stack: database dump, n8n
// data directory and tunnel configuration, bundled into one dated archive
// under the backup directory, then prunes expired snapshots. Same artifact
// shape as the generated backup.sh, so both tools' archives are
// interchangeable for restore.
func BackupActionHandler(cfg *domain.InstallConfig) error {
	date := time.Now().Format("2006-01-02")

	workDir, err := os.MkdirTemp("", "n8n-backup")
	if err != nil {
		return fmt.Errorf("unable to create a working directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	partsDir := filepath.Join(workDir, "parts")
	if err := os.Mkdir(partsDir, 0755); err != nil {
		return err
	}

	fmt.Printf(" %s dumping the database...\n", color.YellowString("▶"))
	if err := dumpDatabase(cfg, filepath.Join(partsDir, "db-"+date+".sql")); err != nil {
		return fmt.Errorf("unable to dump the database: %w", err)
	}

	fmt.Printf(" %s archiving the data directories...\n", color.YellowString("▶"))
	if err := archiveDir(cfg.DataDir(), filepath.Join(partsDir, "n8n-data-"+date+".tar.gz"), true); err != nil {
		return fmt.Errorf("unable to archive the n8n data directory: %w", err)
	}
	if err := archiveDir(domain.CloudflaredDir, filepath.Join(partsDir, "cloudflared-"+date+".tar.gz"), true); err != nil {
		return fmt.Errorf("unable to archive the tunnel configuration: %w", err)
	}

	bundlePath := filepath.Join(workDir, BackupArchiveName(date))
	if err := archiveDir(partsDir, bundlePath, false); err != nil {
		return fmt.Errorf("unable to bundle the backup archive: %w", err)
	}

	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		return fmt.Errorf("unable to create the backup directory: %w", err)
	}

	// /tmp is usually another filesystem, so copy instead of rename
	target := filepath.Join(cfg.BackupDir, BackupArchiveName(date))
	if err := utils.CopyFileContents(bundlePath, target, 0644); err != nil {
		return fmt.Errorf("unable to store the backup archive: %w", err)
	}

	pruned, err := PruneBackups(cfg.BackupDir, time.Now())
	if err != nil {
		return fmt.Errorf("unable to prune old backups: %w", err)
	}
	for _, name := range pruned {
		fmt.Printf("   pruned %s\n", name)
	}

	fmt.Printf("\n %s backup written to %s\n", color.GreenString("✓"), target)
	return nil
}

// archiveDir writes a tar.gz of source at target. A failure on any part
// of the write surfaces as an error, so a broken snapshot is never
// reported as a success (and never triggers pruning of good ones).
func archiveDir(source, target string, includeRoot bool) error {
	archive := new(archivex.TarFile)
	if err := archive.Create(target); err != nil {
		return err
	}
	if err := archive.AddAll(source, includeRoot); err != nil {
		archive.Close()
		return err
	}
	return archive.Close()
}

func dumpDatabase(cfg *domain.InstallConfig, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	dump := domain.NewComposeCommand(cfg.StackDir, []string{"exec", "-T", "db", "pg_dump", "-U", cfg.DBUser, cfg.DBName})
	if err := dump.WriteResultToFile(file); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// PruneBackups deletes snapshot bundles whose date key lies strictly
// outside the retention window. A snapshot exactly at the window edge is
// preserved. Returns the deleted filenames.
func PruneBackups(dir string, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	// date keys compare lexicographically; an archive exactly at the
	// window edge is preserved
	cutoff := now.AddDate(0, 0, -steps.RetentionDays).Format("2006-01-02")

	pruned := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := backupArchivePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		if match[1] < cutoff {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return pruned, err
			}
			pruned = append(pruned, entry.Name())
		}
	}

	return pruned, nil
}
