package steps

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"text/template"
	"time"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/Songmu/prompter"
	"github.com/fatih/color"
)

const (
	unitPath        = "/etc/systemd/system/cloudflared.service"
	fallbackPidFile = "/run/cloudflared-fallback.pid"
	fallbackLogFile = "/var/log/cloudflared-fallback.log"

	serviceSettleDelay = 5 * time.Second
)

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=Cloudflare Tunnel for n8n
After=network-online.target
Wants=network-online.target

[Service]
ExecStart=/usr/local/bin/cloudflared --config {{ .ConfigPath }} tunnel run
Restart=on-failure
RestartSec=5
User=root

[Install]
WantedBy=multi-user.target
`))

// BuildServiceUnit renders the systemd unit supervising the tunnel client.
func BuildServiceUnit(configPath string) (string, error) {
	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, struct{ ConfigPath string }{configPath}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TunnelService registers and starts the tunnel as a systemd unit. This
// step soft-fails: an inactive service is reported and a detached
// foreground fallback is offered, but the installation continues.
func TunnelService() domain.Step {
	return domain.Step{
		ID:          StepTunnelService,
		Name:        "Tunnel service registration",
		Description: "Install and start the cloudflared systemd service",
		Check: func(ctx *domain.ExecutionContext) bool {
			return serviceActive("cloudflared")
		},
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			configPath := filepath.Join(domain.CloudflaredDir, "config.yml")

			unit, err := BuildServiceUnit(configPath)
			if err != nil {
				return domain.Fatalf("unable to render the service unit: %w", err)
			}
			if err := os.WriteFile(unitPath, []byte(unit), 0644); err != nil {
				return domain.Fatalf("unable to write %s: %w", unitPath, err)
			}

			if err := domain.NewCommand([]string{"systemctl", "daemon-reload"}).Execute(); err != nil {
				return domain.Fatalf("systemctl daemon-reload failed: %w", err)
			}
			domain.NewCommand([]string{"systemctl", "enable", "--now", "cloudflared"}).Execute()

			// give the daemon a moment before the status check
			time.Sleep(serviceSettleDelay)

			if serviceActive("cloudflared") {
				fmt.Printf(" %s cloudflared service is active\n", color.GreenString("✓"))
				return domain.Success()
			}

			fmt.Printf(" %s the cloudflared service did not come up, check 'journalctl -u cloudflared'\n", color.RedString("✗"))

			note := "tunnel service inactive; run 'cloudflared --config " + configPath + " tunnel run' manually"
			if !ctx.AssumeYes && prompter.YN("Start the tunnel as a detached fallback process instead?", true) {
				if pid, err := startDetachedTunnel(configPath); err == nil {
					note = fmt.Sprintf("tunnel running as unsupervised fallback process (pid %d)", pid)
					fmt.Printf(" %s fallback tunnel started (pid %d)\n", color.YellowString("!"), pid)
				} else {
					fmt.Printf(" %s fallback start failed: %s\n", color.RedString("✗"), err)
				}
			}

			return domain.Degraded(note, fmt.Errorf("cloudflared service is not active"))
		},
	}
}

func serviceActive(unit string) bool {
	state, err := domain.NewCommand([]string{"systemctl", "is-active", unit}).GetResult()
	return err == nil && state == "active"
}

// startDetachedTunnel runs the tunnel client in its own session, writes
// its pid to a file and does not supervise it further.
func startDetachedTunnel(configPath string) (int, error) {
	logFile, err := os.OpenFile(fallbackLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	defer logFile.Close()

	cmd := exec.Command("cloudflared", "--config", configPath, "tunnel", "run")
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	if err := os.WriteFile(fallbackPidFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return pid, err
	}
	return pid, nil
}
