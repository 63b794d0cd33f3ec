package actions

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/Songmu/prompter"
	"github.com/fatih/color"
)

const dbSettleDelay = 10 * time.Second

// ValidRestoreDate reports whether a restore argument is a real
// YYYY-MM-DD date.
func ValidRestoreDate(date string) bool {
	parsed, err := time.Parse("2006-01-02", date)
	return err == nil && parsed.Format("2006-01-02") == date
}

// RestoreActionHandler replays the snapshot of the given date over the
// live installation. Destructive: the n8n data directory, the tunnel
// configuration and the database are replaced wholesale. All validation
// happens before anything is touched.
func RestoreActionHandler(cfg *domain.InstallConfig, date string, assumeYes bool) error {
	if !ValidRestoreDate(date) {
		return fmt.Errorf("'%s' is not a valid date, expected YYYY-MM-DD", date)
	}

	archive := filepath.Join(cfg.BackupDir, BackupArchiveName(date))
	if _, err := os.Stat(archive); err != nil {
		return fmt.Errorf("no backup found for %s at %s", date, archive)
	}

	if !assumeYes {
		fmt.Printf(" %s this will overwrite the live n8n data and database with the %s snapshot\n", color.RedString("!"), date)
		if !prompter.YN("Continue?", false) {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	workDir, err := os.MkdirTemp("", "n8n-restore")
	if err != nil {
		return fmt.Errorf("unable to create a working directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := extractTarGz(archive, workDir); err != nil {
		return fmt.Errorf("unable to unpack %s: %w", archive, err)
	}

	// the bundle must be complete before services are stopped
	dumpPath := filepath.Join(workDir, "db-"+date+".sql")
	dataPath := filepath.Join(workDir, "n8n-data-"+date+".tar.gz")
	tunnelPath := filepath.Join(workDir, "cloudflared-"+date+".tar.gz")
	for _, path := range []string{dumpPath, dataPath, tunnelPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("the backup archive is incomplete, missing %s", filepath.Base(path))
		}
	}

	fmt.Printf("\n %s stopping the stack...\n", color.YellowString("▶"))
	if err := domain.NewComposeCommand(cfg.StackDir, []string{"down"}).Execute(); err != nil {
		return fmt.Errorf("unable to stop the stack: %w", err)
	}

	fmt.Printf(" %s restoring the data directories...\n", color.YellowString("▶"))
	if err := os.RemoveAll(cfg.DataDir()); err != nil {
		return err
	}
	if err := extractTarGz(dataPath, cfg.StackDir); err != nil {
		return fmt.Errorf("unable to restore the n8n data directory: %w", err)
	}
	if err := extractTarGz(tunnelPath, filepath.Dir(domain.CloudflaredDir)); err != nil {
		return fmt.Errorf("unable to restore the tunnel configuration: %w", err)
	}

	fmt.Printf(" %s replaying the database dump...\n", color.YellowString("▶"))
	if err := domain.NewComposeCommand(cfg.StackDir, []string{"up", "-d", "db"}).Execute(); err != nil {
		return fmt.Errorf("unable to start the database: %w", err)
	}
	time.Sleep(dbSettleDelay)

	domain.NewComposeCommand(cfg.StackDir, []string{"exec", "-T", "db", "dropdb", "-U", cfg.DBUser, "--if-exists", cfg.DBName}).Execute()
	if err := domain.NewComposeCommand(cfg.StackDir, []string{"exec", "-T", "db", "createdb", "-U", cfg.DBUser, cfg.DBName}).Execute(); err != nil {
		return fmt.Errorf("unable to recreate the database: %w", err)
	}

	dump, err := os.Open(dumpPath)
	if err != nil {
		return err
	}
	defer dump.Close()

	replay := domain.NewComposeCommand(cfg.StackDir, []string{"exec", "-T", "db", "psql", "-U", cfg.DBUser, "-d", cfg.DBName})
	if err := replay.ExecuteWithStdin(dump); err != nil {
		return fmt.Errorf("unable to replay the database dump: %w", err)
	}

	fmt.Printf(" %s starting the stack...\n", color.YellowString("▶"))
	if err := domain.NewComposeCommand(cfg.StackDir, []string{"up", "-d"}).Execute(); err != nil {
		return fmt.Errorf("unable to start the stack: %w", err)
	}

	fmt.Printf("\n %s restore of %s complete\n", color.GreenString("✓"), date)
	return nil
}

// extractTarGz unpacks a tar.gz archive into destDir, refusing entries
// that would escape it.
func extractTarGz(archive, destDir string) error {
	reader, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer reader.Close()

	gzipReader, err := gzip.NewReader(reader)
	if err != nil {
		return err
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}

		name := filepath.Clean(header.Name)
		if name == "." || strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			continue
		}
		target := filepath.Join(destDir, name)

		info := header.FileInfo()
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, info.Mode()); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}

		case tar.TypeLink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Link(filepath.Join(destDir, filepath.Clean(header.Linkname)), target); err != nil {
				return err
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			file, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode())
			if err != nil {
				return err
			}
			if _, err := io.Copy(file, tarReader); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

		default:
			fmt.Printf(" %s skipping unsupported archive entry %s\n", color.YellowString("!"), name)
		}
	}

	return nil
}
