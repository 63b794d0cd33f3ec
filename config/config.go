package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/Songmu/prompter"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "/etc/n8n-deployer/config.yml"

// Load reads a previously saved installer config. A missing file returns
// (nil, nil): the caller decides whether to gather values interactively.
func Load(path string) (*domain.InstallConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg domain.InstallConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse the config file %s: %w", path, err)
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

// Save persists the installer config so a resumed run after a reboot does
// not re-ask. The file holds the database password, hence 0600.
func Save(path string, cfg *domain.InstallConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Gather builds the installer config from flag values, falling back to
// interactive prompts for anything missing. With assumeYes set, prompting
// is not allowed and a missing domain is an error.
func Gather(domainFlag, passwordFlag, tunnelFlag string, assumeYes bool) (*domain.InstallConfig, error) {
	cfg := &domain.InstallConfig{
		Domain:     strings.TrimSpace(domainFlag),
		DBPassword: passwordFlag,
		TunnelName: strings.TrimSpace(tunnelFlag),
	}
	applyDefaults(cfg)

	if cfg.Domain == "" {
		if assumeYes {
			return nil, fmt.Errorf("--domain is required with --yes")
		}
		cfg.Domain = strings.TrimSpace(prompter.Prompt("Domain name for n8n (e.g. n8n.example.org)", ""))
		if cfg.Domain == "" {
			return nil, fmt.Errorf("a domain name is required")
		}
	}

	if cfg.DBPassword == "" && !assumeYes {
		password := prompter.Password(fmt.Sprintf("Database password (empty for the default '%s')", domain.DefaultDBPassword))
		if password != "" {
			cfg.DBPassword = password
		}
	}
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *domain.InstallConfig) {
	if cfg.DBUser == "" {
		cfg.DBUser = domain.DefaultDBUser
	}
	if cfg.DBPassword == "" {
		cfg.DBPassword = domain.DefaultDBPassword
	}
	if cfg.DBName == "" {
		cfg.DBName = domain.DefaultDBName
	}
	if cfg.TunnelName == "" {
		cfg.TunnelName = domain.DefaultTunnelName
	}
	if cfg.StackDir == "" {
		cfg.StackDir = domain.DefaultStackDir
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = domain.DefaultBackupDir
	}
}
