package steps

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/utils"

	"github.com/fatih/color"
)

const (
	backupScriptPath  = "/usr/local/bin/n8n-backup.sh"
	restoreScriptPath = "/usr/local/bin/n8n-restore.sh"

	// RetentionDays is the backup retention window: archives strictly
	// older are pruned, an archive exactly at the edge is preserved.
	RetentionDays = 30

	backupCronEntry = "0 2 * * * " + backupScriptPath
)

type scriptValues struct {
	StackDir       string
	BackupDir      string
	DBUser         string
	DBName         string
	CloudflaredDir string
	RetentionDays  int
}

var backupScriptTemplate = template.Must(template.New("backup").Parse(`#!/bin/bash
set -euo pipefail

BACKUP_DIR="{{ .BackupDir }}"
STACK_DIR="{{ .StackDir }}"
DATE="$(date +%F)"

mkdir -p "$BACKUP_DIR"
cd "$STACK_DIR"

docker-compose exec -T db pg_dump -U {{ .DBUser }} {{ .DBName }} > "$BACKUP_DIR/db-$DATE.sql"
tar -czf "$BACKUP_DIR/n8n-data-$DATE.tar.gz" -C "$STACK_DIR" n8n_data
tar -czf "$BACKUP_DIR/cloudflared-$DATE.tar.gz" -C "$(dirname {{ .CloudflaredDir }})" "$(basename {{ .CloudflaredDir }})"

tar -czf "$BACKUP_DIR/n8n-backup-$DATE.tar.gz" -C "$BACKUP_DIR" \
    "db-$DATE.sql" "n8n-data-$DATE.tar.gz" "cloudflared-$DATE.tar.gz"
rm -f "$BACKUP_DIR/db-$DATE.sql" "$BACKUP_DIR/n8n-data-$DATE.tar.gz" "$BACKUP_DIR/cloudflared-$DATE.tar.gz"

find "$BACKUP_DIR" -name 'n8n-backup-*.tar.gz' -mtime +{{ .RetentionDays }} -delete

echo "backup for $DATE written to $BACKUP_DIR/n8n-backup-$DATE.tar.gz"
`))

var restoreScriptTemplate = template.Must(template.New("restore").Parse(`#!/bin/bash
set -euo pipefail

if [ $# -ne 1 ]; then
    echo "usage: $0 YYYY-MM-DD" >&2
    exit 1
fi

DATE="$1"
BACKUP_DIR="{{ .BackupDir }}"
STACK_DIR="{{ .StackDir }}"
ARCHIVE="$BACKUP_DIR/n8n-backup-$DATE.tar.gz"

if [ ! -f "$ARCHIVE" ]; then
    echo "no backup found for $DATE at $ARCHIVE" >&2
    exit 1
fi

cd "$STACK_DIR"
docker-compose down

WORK="$(mktemp -d)"
trap 'rm -rf "$WORK"' EXIT
tar -xzf "$ARCHIVE" -C "$WORK"

rm -rf "$STACK_DIR/n8n_data"
tar -xzf "$WORK/n8n-data-$DATE.tar.gz" -C "$STACK_DIR"
tar -xzf "$WORK/cloudflared-$DATE.tar.gz" -C "$(dirname {{ .CloudflaredDir }})"

docker-compose up -d db
sleep 10
docker-compose exec -T db dropdb -U {{ .DBUser }} --if-exists {{ .DBName }}
docker-compose exec -T db createdb -U {{ .DBUser }} {{ .DBName }}
docker-compose exec -T db psql -U {{ .DBUser }} -d {{ .DBName }} < "$WORK/db-$DATE.sql"

docker-compose up -d
echo "restore of $DATE complete"
`))

// RenderBackupScript produces the standalone daily backup script.
func RenderBackupScript(cfg *domain.InstallConfig) ([]byte, error) {
	return renderScript(backupScriptTemplate, cfg)
}

// RenderRestoreScript produces the standalone restore script. Restore is
// destructive and only ever run manually, with an explicit date argument.
func RenderRestoreScript(cfg *domain.InstallConfig) ([]byte, error) {
	return renderScript(restoreScriptTemplate, cfg)
}

func renderScript(tmpl *template.Template, cfg *domain.InstallConfig) ([]byte, error) {
	values := scriptValues{
		StackDir:       cfg.StackDir,
		BackupDir:      cfg.BackupDir,
		DBUser:         cfg.DBUser,
		DBName:         cfg.DBName,
		CloudflaredDir: domain.CloudflaredDir,
		RetentionDays:  RetentionDays,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BackupSchedule writes the backup and restore scripts and registers the
// daily backup in the root crontab. A failing crontab registration is a
// soft failure: the scripts still work when run by hand.
func BackupSchedule() domain.Step {
	return domain.Step{
		ID:          StepBackupSchedule,
		Name:        "Backup schedule",
		Description: "Write backup/restore scripts and register the daily cron job",
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			cfg := ctx.Config

			if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
				return domain.Fatalf("unable to create %s: %w", cfg.BackupDir, err)
			}

			backup, err := RenderBackupScript(cfg)
			if err != nil {
				return domain.Fatalf("unable to render the backup script: %w", err)
			}
			if err := os.WriteFile(backupScriptPath, backup, 0755); err != nil {
				return domain.Fatalf("unable to write %s: %w", backupScriptPath, err)
			}

			restore, err := RenderRestoreScript(cfg)
			if err != nil {
				return domain.Fatalf("unable to render the restore script: %w", err)
			}
			if err := os.WriteFile(restoreScriptPath, restore, 0755); err != nil {
				return domain.Fatalf("unable to write %s: %w", restoreScriptPath, err)
			}

			fmt.Printf(" %s %s and %s written\n", color.GreenString("✓"), backupScriptPath, restoreScriptPath)

			if err := utils.EnsureCronEntry(backupCronEntry); err != nil {
				return domain.Degraded(
					fmt.Sprintf("daily backup not scheduled; add '%s' to the root crontab manually", backupCronEntry),
					err)
			}

			fmt.Printf(" %s daily backup scheduled at 02:00\n", color.GreenString("✓"))
			return domain.Success()
		},
	}
}
