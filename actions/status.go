package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/utils"

	"github.com/fatih/color"
)

// StatusActionHandler reports the state of the installation: containers,
// tunnel service and latest backup.
func StatusActionHandler(cfg *domain.InstallConfig) error {
	fmt.Printf("\n n8n at %s\n\n", color.CyanString(cfg.URL()))

	for _, service := range []string{"db", "n8n"} {
		state := "not created"
		if containerID, err := utils.GetContainerID(cfg.StackDir, service); err == nil {
			if s, err := utils.ContainerState(containerID); err == nil {
				state = s
			}
		}
		fmt.Printf("   %-12s %s\n", service, colorizeState(state))
	}

	tunnelState, err := domain.NewCommand([]string{"systemctl", "is-active", "cloudflared"}).GetResult()
	if err != nil {
		tunnelState = "inactive"
	}
	fmt.Printf("   %-12s %s\n", "cloudflared", colorizeState(tunnelState))

	if latest, ok := latestBackup(cfg.BackupDir); ok {
		fmt.Printf("\n   latest backup: %s\n", latest)
	} else {
		fmt.Printf("\n   no backups yet in %s\n", cfg.BackupDir)
	}

	phase := domain.NewStateStore(domain.DefaultStatePath).Load()
	if phase != domain.PhaseFresh {
		fmt.Printf("\n %s a reboot resume is pending (%s); run 'n8n-deployer install'\n", color.YellowString("!"), phase)
	}

	return nil
}

func colorizeState(state string) string {
	switch state {
	case "running", "active":
		return color.GreenString(state)
	default:
		return color.RedString(state)
	}
}

func latestBackup(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	names := []string{}
	for _, entry := range entries {
		if backupArchivePattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", false
	}

	// the date key sorts lexicographically
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), true
}
