package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	saved := &domain.InstallConfig{
		Domain:     "n8n.example.org",
		DBUser:     "n8n",
		DBPassword: "hunter2",
		DBName:     "n8n",
		TunnelName: "n8n-tunnel",
		StackDir:   "/opt/n8n",
		BackupDir:  "/root/backups",
	}
	require.NoError(t, Save(path, saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("domain: example.org\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "example.org", cfg.Domain)
	assert.Equal(t, domain.DefaultDBUser, cfg.DBUser)
	assert.Equal(t, domain.DefaultDBPassword, cfg.DBPassword)
	assert.Equal(t, domain.DefaultTunnelName, cfg.TunnelName)
	assert.Equal(t, domain.DefaultStackDir, cfg.StackDir)
	assert.Equal(t, domain.DefaultBackupDir, cfg.BackupDir)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("domain: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGatherNonInteractiveRequiresDomain(t *testing.T) {
	_, err := Gather("", "", "", true)
	assert.Error(t, err)
}

func TestGatherNonInteractiveDefaults(t *testing.T) {
	cfg, err := Gather("example.org", "", "", true)
	require.NoError(t, err)
	assert.Equal(t, "example.org", cfg.Domain)
	assert.Equal(t, domain.DefaultDBPassword, cfg.DBPassword)
	assert.Equal(t, domain.DefaultTunnelName, cfg.TunnelName)
}
