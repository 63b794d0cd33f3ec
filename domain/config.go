package domain

import "path"

const (
	DefaultDBUser     = "n8n"
	DefaultDBPassword = "n8npass"
	DefaultDBName     = "n8n"
	DefaultTunnelName = "n8n-tunnel"

	DefaultStackDir  = "/opt/n8n"
	DefaultBackupDir = "/root/backups"

	// Local port the n8n container is published on; the tunnel ingress
	// points at it.
	N8NPort = 5678

	CloudflaredDir  = "/etc/cloudflared"
	CloudflaredCert = "/root/.cloudflared/cert.pem"
)

// InstallConfig holds the user-supplied installation values. It is
// persisted so a resumed run after a reboot never re-asks.
type InstallConfig struct {
	Domain     string `yaml:"domain"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	TunnelName string `yaml:"tunnel_name"`
	StackDir   string `yaml:"stack_dir"`
	BackupDir  string `yaml:"backup_dir"`
}

func (c InstallConfig) ComposeFile() string {
	return path.Join(c.StackDir, "docker-compose.yml")
}

func (c InstallConfig) DataDir() string {
	return path.Join(c.StackDir, "n8n_data")
}

func (c InstallConfig) DBDataDir() string {
	return path.Join(c.StackDir, "db_data")
}

func (c InstallConfig) URL() string {
	return "https://" + c.Domain
}
