package steps

import (
	"fmt"
	"os"
	"strings"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
)

// Preflight is the hard gate: Raspberry Pi hardware and root privileges.
// Either check failing is fatal, there is no retry and no manual fallback.
func Preflight() domain.Step {
	return domain.Step{
		ID:          StepPreflight,
		Name:        "Preflight checks",
		Description: "Verify Raspberry Pi hardware and root privileges",
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			if err := CheckPreflight(); err != nil {
				return domain.Fatal(err)
			}
			return domain.Success()
		},
	}
}

// CheckPreflight verifies root privileges and Raspberry Pi hardware. The
// install handler also calls it before the first prompt, so a refused run
// never asks questions first.
func CheckPreflight() error {
	return preflightError(os.Geteuid(), hardwareModel())
}

func preflightError(euid int, model string) error {
	if euid != 0 {
		return fmt.Errorf("this installer must be run as root (use sudo)")
	}
	if !LooksLikeRaspberryPi(model) {
		return fmt.Errorf("this installer targets Raspberry Pi hardware, detected: %q", strings.TrimSpace(model))
	}
	return nil
}

// LooksLikeRaspberryPi reports whether a hardware description (device-tree
// model or cpuinfo contents) identifies a Raspberry Pi.
func LooksLikeRaspberryPi(description string) bool {
	return strings.Contains(description, "Raspberry Pi")
}

func hardwareModel() string {
	// device-tree model is the authoritative source; cpuinfo still
	// carries a Model line on Pi OS and works in containers without
	// /proc/device-tree.
	if data, err := os.ReadFile("/proc/device-tree/model"); err == nil {
		return strings.Trim(string(data), "\x00")
	}
	if data, err := os.ReadFile("/proc/cpuinfo"); err == nil {
		return string(data)
	}
	return ""
}
