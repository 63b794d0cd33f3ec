package utils

import (
	"fmt"
	"os/exec"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
)

// CommandExists reports whether a tool is on PATH. Installer steps probe
// with this before installing anything, so re-runs never duplicate work.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// EngineRunning probes the Docker daemon.
func EngineRunning() bool {
	cmd := domain.NewCommand([]string{"docker", "info"})
	_, err := cmd.GetResult()
	return err == nil
}

// GetContainerID resolves a Compose service name to its container id.
func GetContainerID(stackDir string, service string) (string, error) {
	cmd := domain.NewComposeCommand(stackDir, []string{"ps", "-q", service})
	containerID, err := cmd.GetResult()
	if err != nil {
		return "", fmt.Errorf("unable to get the container id of '%s': %w", service, err)
	}
	if containerID == "" {
		return "", fmt.Errorf("service '%s' has no container", service)
	}

	return containerID, nil
}

// ContainerState returns the runtime state of a container ("running",
// "exited", ...).
func ContainerState(containerID string) (string, error) {
	cmd := domain.NewCommand([]string{"docker", "inspect", "--format", "{{.State.Status}}", containerID})
	state, err := cmd.GetResult()
	if err != nil {
		return "", fmt.Errorf("unable to inspect container %s: %w", containerID, err)
	}

	return state, nil
}

// StackRunning reports whether every given Compose service has a running
// container.
func StackRunning(stackDir string, services ...string) bool {
	for _, service := range services {
		containerID, err := GetContainerID(stackDir, service)
		if err != nil {
			return false
		}
		state, err := ContainerState(containerID)
		if err != nil || state != "running" {
			return false
		}
	}

	return true
}
