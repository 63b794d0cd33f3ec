package steps

import (
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
)

// SystemUpdate refreshes the package index and upgrades the OS. The
// upgrade can take a long while on a Pi; no timeout is applied.
func SystemUpdate() domain.Step {
	return domain.Step{
		ID:          StepSystemUpdate,
		Name:        "System update",
		Description: "apt-get update and upgrade",
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			if err := domain.NewCommand([]string{"apt-get", "update"}).Execute(); err != nil {
				return domain.Fatalf("apt-get update failed: %w", err)
			}
			if err := domain.NewCommand([]string{"apt-get", "upgrade", "-y"}).Execute(); err != nil {
				return domain.Fatalf("apt-get upgrade failed: %w", err)
			}
			return domain.Success()
		},
	}
}
