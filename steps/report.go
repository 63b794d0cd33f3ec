package steps

import (
	"fmt"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/fatih/color"
)

// Report prints the final installation summary. Terminal step; it never
// fails.
func Report() domain.Step {
	return domain.Step{
		ID:          StepReport,
		Name:        "Installation report",
		Description: "Show the final summary",
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			cfg := ctx.Config

			fmt.Printf("\n %s n8n is installed\n\n", color.GreenString("✓"))
			fmt.Printf("   URL:            %s\n", cfg.URL())
			fmt.Printf("   Stack:          %s\n", cfg.ComposeFile())
			if ctx.TunnelID != "" {
				fmt.Printf("   Tunnel:         %s (%s)\n", cfg.TunnelName, ctx.TunnelID)
			} else {
				fmt.Printf("   Tunnel:         %s\n", cfg.TunnelName)
			}
			fmt.Printf("   Backups:        %s (daily at 02:00, %d days kept)\n", cfg.BackupDir, RetentionDays)
			fmt.Printf("   Restore:        %s YYYY-MM-DD\n", restoreScriptPath)

			if len(ctx.Degraded) > 0 {
				fmt.Printf("\n %s completed with warnings:\n", color.YellowString("!"))
				for _, note := range ctx.Degraded {
					fmt.Printf("   → %s\n", note)
				}
			}

			fmt.Println("\n n8n can take a minute to come up on a Pi; give it a moment before the first visit.")
			return domain.Success()
		},
	}
}
