package actions

import (
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
)

func StartActionHandler(cfg *domain.InstallConfig) error {
	return domain.NewComposeCommand(cfg.StackDir, []string{"up", "-d"}).Execute()
}

func StopActionHandler(cfg *domain.InstallConfig) error {
	return domain.NewComposeCommand(cfg.StackDir, []string{"down"}).Execute()
}

func LogsActionHandler(cfg *domain.InstallConfig, service string) error {
	args := []string{"logs", "--tail", "100"}
	if service != "" {
		args = append(args, service)
	}
	return domain.NewComposeCommand(cfg.StackDir, args).Execute()
}
