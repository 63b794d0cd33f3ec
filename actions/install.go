package actions

import (
	"fmt"
	"os"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/config"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/steps"

	"github.com/Songmu/prompter"
	"github.com/fatih/color"
)

// InstallActionHandler drives the resumable provisioning workflow: load
// the persisted phase, reset it, and run the matching suffix of the step
// sequence. Hard step failures stop the run (fail-stop); the next
// invocation repairs by re-running the idempotent steps.
func InstallActionHandler(domainFlag, passwordFlag, tunnelFlag string, assumeYes bool) error {
	store := domain.NewStateStore(domain.DefaultStatePath)
	phase := store.Load()

	// root and hardware are verified before the first prompt, so an
	// unprivileged run is refused without asking questions
	if err := steps.CheckPreflight(); err != nil {
		return err
	}

	cfg, err := loadOrGatherConfig(domainFlag, passwordFlag, tunnelFlag, assumeYes)
	if err != nil {
		return err
	}

	plan := steps.StepsFor(phase)

	if phase != domain.PhaseFresh {
		fmt.Printf("\n %s resuming installation after reboot (%s)\n", color.YellowString("▶"), phase)
		if err := store.Reset(); err != nil {
			return fmt.Errorf("unable to reset the installation state: %w", err)
		}
	} else if !assumeYes {
		fmt.Printf("\n This will install n8n at %s on this Raspberry Pi:\n\n", color.CyanString(cfg.URL()))
		for i, step := range plan {
			fmt.Printf("   %2d. %s\n", i+1, step.Description)
		}
		fmt.Println("")
		if !prompter.YN("Start the installation?", true) {
			fmt.Println("Installation cancelled.")
			return nil
		}
	}

	// saved so the resumed run after a reboot picks up the same answers
	if err := config.Save(config.DefaultPath, cfg); err != nil {
		fmt.Printf(" %s unable to save the config to %s: %s\n", color.YellowString("!"), config.DefaultPath, err)
	}

	ctx := &domain.ExecutionContext{Config: cfg, State: store, AssumeYes: assumeYes}

	return runSteps(ctx, plan)
}

// runSteps executes the given steps in order. A satisfied Check skips the
// step, a degraded result is recorded and the run continues, a halt ends
// the run cleanly (reboot pending) and a fatal result stops it with the
// step's error.
func runSteps(ctx *domain.ExecutionContext, plan []domain.Step) error {
	for _, step := range plan {
		fmt.Printf("\n %s %s\n", color.YellowString("▶"), step.Name)

		if step.Check != nil && step.Check(ctx) {
			fmt.Printf(" %s already in place, skipping\n", color.GreenString("✓"))
			continue
		}

		result := step.Run(ctx)
		switch result.Status {
		case domain.StatusSuccess:
			// step reported its own details
		case domain.StatusRecovered:
			fmt.Printf(" %s %s\n", color.YellowString("!"), result.Note)
		case domain.StatusDegraded:
			ctx.RecordDegraded(result.Note)
		case domain.StatusHalt:
			return nil
		case domain.StatusFatal:
			return fmt.Errorf("%s failed: %w", step.Name, result.Err)
		}
	}

	return nil
}

// loadOrGatherConfig prefers the config persisted by a previous run
// (flags still override its values), and gathers interactively otherwise.
func loadOrGatherConfig(domainFlag, passwordFlag, tunnelFlag string, assumeYes bool) (*domain.InstallConfig, error) {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Gather(domainFlag, passwordFlag, tunnelFlag, assumeYes)
	}

	if domainFlag != "" {
		cfg.Domain = domainFlag
	}
	if passwordFlag != "" {
		cfg.DBPassword = passwordFlag
	}
	if tunnelFlag != "" {
		cfg.TunnelName = tunnelFlag
	}
	return cfg, nil
}

// RequireConfig loads the persisted installer config for the standalone
// commands (backup, restore, status, start...), which only make sense
// after an installation.
func RequireConfig() (*domain.InstallConfig, error) {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no installation found (%s is missing); run 'n8n-deployer install' first", config.DefaultPath)
	}
	if _, err := os.Stat(cfg.ComposeFile()); err != nil {
		return nil, fmt.Errorf("the compose file %s is missing; run 'n8n-deployer install' first", cfg.ComposeFile())
	}
	return cfg, nil
}
