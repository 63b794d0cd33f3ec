package steps

import (
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
)

const (
	StepPreflight      domain.StepID = "preflight"
	StepSystemUpdate   domain.StepID = "system-update"
	StepDocker         domain.StepID = "docker"
	StepStackConfig    domain.StepID = "stack-config"
	StepCloudflared    domain.StepID = "cloudflared"
	StepTunnel         domain.StepID = "tunnel"
	StepTunnelService  domain.StepID = "tunnel-service"
	StepBackupSchedule domain.StepID = "backup-schedule"
	StepStackUp        domain.StepID = "stack-up"
	StepReport         domain.StepID = "report"
)

// Plan is the full provisioning sequence, in execution order.
func Plan() []domain.Step {
	return []domain.Step{
		Preflight(),
		SystemUpdate(),
		DockerInstall(),
		StackConfig(),
		CloudflaredInstall(),
		TunnelSetup(),
		TunnelService(),
		BackupSchedule(),
		StackUp(),
		Report(),
	}
}

// StepsFor returns the suffix of the plan a resumed run executes for the
// given persisted phase. Docker forces a reboot mid-sequence, so its
// resume point is the step right after it; a stack reboot resumes at the
// startup step.
func StepsFor(phase domain.Phase) []domain.Step {
	plan := Plan()

	switch phase {
	case domain.PhaseDockerReboot:
		return suffixFrom(plan, StepStackConfig)
	case domain.PhaseStackReboot:
		return suffixFrom(plan, StepStackUp)
	}
	return plan
}

func suffixFrom(plan []domain.Step, id domain.StepID) []domain.Step {
	for i, step := range plan {
		if step.ID == id {
			return plan[i:]
		}
	}
	return plan
}
