package steps

import (
	"fmt"
	"time"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/utils"

	"github.com/Songmu/prompter"
	"github.com/fatih/color"
)

const stackSettleDelay = 10 * time.Second

// StackUp starts the container stack with a bounded remediation sequence:
// restart the engine, prune stale networks, retry once. If the engine
// cannot be revived the stack-reboot phase is persisted and recovery is
// deferred to the next invocation.
func StackUp() domain.Step {
	return domain.Step{
		ID:          StepStackUp,
		Name:        "Stack startup",
		Description: "Start the n8n containers",
		Check: func(ctx *domain.ExecutionContext) bool {
			return utils.StackRunning(ctx.Config.StackDir, "db", "n8n")
		},
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			stackDir := ctx.Config.StackDir

			if utils.EngineRunning() {
				if startStack(stackDir) {
					return domain.Success()
				}
			}

			fmt.Printf(" %s stack did not start, attempting recovery\n", color.YellowString("!"))

			domain.NewCommand([]string{"systemctl", "restart", "docker"}).Execute()
			time.Sleep(stackSettleDelay)

			if !utils.EngineRunning() {
				if err := ctx.State.Save(domain.PhaseStackReboot); err != nil {
					return domain.Fatalf("unable to record the installation state: %w", err)
				}

				fmt.Printf(" %s the Docker engine is not responding; a reboot may fix it.\n", color.RedString("✗"))
				fmt.Println("   The installer will resume with the stack startup when run again.")
				if ctx.AssumeYes || prompter.YN("Reboot now?", true) {
					domain.NewCommand([]string{"reboot"}).Execute()
				}
				return domain.Halt()
			}

			domain.NewCommand([]string{"docker", "network", "prune", "-f"}).Execute()

			if startStack(stackDir) {
				return domain.Recovered("stack started after an engine restart")
			}

			return domain.Fatalf("the stack did not start; check 'docker-compose logs' in %s", stackDir)
		},
	}
}

func startStack(stackDir string) bool {
	up := domain.NewComposeCommand(stackDir, []string{"up", "-d"})
	if err := up.Execute(); err != nil {
		return false
	}

	time.Sleep(stackSettleDelay)
	return utils.StackRunning(stackDir, "db", "n8n")
}
