package steps

import (
	"fmt"
	"os"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/utils"

	"github.com/Songmu/prompter"
	"github.com/fatih/color"
)

// DockerInstall installs Docker and docker-compose. This is the one step
// that ends the process instead of returning control to the driver: after
// a fresh install the kernel cgroup changes want a reboot, so the step
// persists the docker-reboot phase and offers to reboot immediately. The
// next invocation resumes right after this step.
func DockerInstall() domain.Step {
	return domain.Step{
		ID:          StepDocker,
		Name:        "Docker installation",
		Description: "Install Docker engine and docker-compose",
		Check: func(ctx *domain.ExecutionContext) bool {
			return utils.CommandExists("docker") && utils.CommandExists("docker-compose")
		},
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			if !utils.CommandExists("docker") {
				install := domain.NewCommand([]string{"sh", "-c", "curl -fsSL https://get.docker.com | sh"})
				if err := install.Execute(); err != nil {
					return domain.Fatalf("docker installation failed: %w", err)
				}

				if user := os.Getenv("SUDO_USER"); user != "" {
					// best effort, docker still works via sudo without it
					domain.NewCommand([]string{"usermod", "-aG", "docker", user}).Execute()
				}
			}

			if !utils.CommandExists("docker-compose") {
				if err := domain.NewCommand([]string{"apt-get", "install", "-y", "docker-compose"}).Execute(); err != nil {
					return domain.Fatalf("docker-compose installation failed: %w", err)
				}
			}

			if err := ctx.State.Save(domain.PhaseDockerReboot); err != nil {
				return domain.Fatalf("unable to record the installation state: %w", err)
			}

			fmt.Printf("\n %s Docker has been installed. A reboot is required before continuing.\n", color.YellowString("!"))
			fmt.Println("   The installer will resume automatically when you run it again after the reboot.")

			if ctx.AssumeYes || prompter.YN("Reboot now?", true) {
				domain.NewCommand([]string{"reboot"}).Execute()
			} else {
				fmt.Println("   Run the installer again after rebooting manually.")
			}

			return domain.Halt()
		},
	}
}
