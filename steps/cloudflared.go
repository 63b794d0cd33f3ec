package steps

import (
	"fmt"
	"os"
	"runtime"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/utils"

	"github.com/fatih/color"
)

const cloudflaredBinary = "/usr/local/bin/cloudflared"

// CloudflaredInstall downloads the tunnel client binary matching the Pi's
// architecture. Skipped when cloudflared is already on PATH.
func CloudflaredInstall() domain.Step {
	return domain.Step{
		ID:          StepCloudflared,
		Name:        "cloudflared installation",
		Description: "Install the Cloudflare Tunnel client",
		Check: func(ctx *domain.ExecutionContext) bool {
			return utils.CommandExists("cloudflared")
		},
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			url, ok := cloudflaredDownloadURL(runtime.GOARCH)
			if !ok {
				return domain.Fatalf("no cloudflared build available for architecture %s", runtime.GOARCH)
			}

			download := domain.NewCommand([]string{"curl", "-fsSL", "-o", cloudflaredBinary, url})
			if err := download.Execute(); err != nil {
				return domain.Fatalf("cloudflared download failed: %w", err)
			}
			if err := os.Chmod(cloudflaredBinary, 0755); err != nil {
				return domain.Fatalf("unable to make cloudflared executable: %w", err)
			}

			version, err := domain.NewCommand([]string{"cloudflared", "--version"}).GetResult()
			if err != nil {
				return domain.Fatalf("cloudflared does not run after installation: %w", err)
			}

			fmt.Printf(" %s %s\n", color.GreenString("✓"), version)
			return domain.Success()
		},
	}
}

// cloudflaredDownloadURL maps a Go architecture to the matching release
// asset. 32-bit Pi OS reports arm.
func cloudflaredDownloadURL(goarch string) (string, bool) {
	base := "https://github.com/cloudflare/cloudflared/releases/latest/download/cloudflared-linux-"

	switch goarch {
	case "arm64":
		return base + "arm64", true
	case "arm":
		return base + "arm", true
	case "amd64":
		return base + "amd64", true
	}
	return "", false
}
