package steps

import (
	"fmt"
	"os"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

type composeService struct {
	Image       string   `yaml:"image"`
	Restart     string   `yaml:"restart"`
	Environment []string `yaml:"environment,omitempty"`
	Ports       []string `yaml:"ports,omitempty"`
	Volumes     []string `yaml:"volumes,omitempty"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
}

type composeDescriptor struct {
	Version  string                    `yaml:"version"`
	Services map[string]composeService `yaml:"services"`
}

// BuildComposeFile renders the two-service stack descriptor (postgres +
// n8n) for the given installation values.
func BuildComposeFile(cfg *domain.InstallConfig) ([]byte, error) {
	descriptor := composeDescriptor{
		Version: "3.7",
		Services: map[string]composeService{
			"db": {
				Image:   "postgres:15-alpine",
				Restart: "unless-stopped",
				Environment: []string{
					"POSTGRES_USER=" + cfg.DBUser,
					"POSTGRES_PASSWORD=" + cfg.DBPassword,
					"POSTGRES_DB=" + cfg.DBName,
				},
				Volumes: []string{"./db_data:/var/lib/postgresql/data"},
			},
			"n8n": {
				Image:   "n8nio/n8n",
				Restart: "unless-stopped",
				Environment: []string{
					"DB_TYPE=postgresdb",
					"DB_POSTGRESDB_HOST=db",
					"DB_POSTGRESDB_PORT=5432",
					"DB_POSTGRESDB_DATABASE=" + cfg.DBName,
					"DB_POSTGRESDB_USER=" + cfg.DBUser,
					"DB_POSTGRESDB_PASSWORD=" + cfg.DBPassword,
					"N8N_HOST=" + cfg.Domain,
					"N8N_PROTOCOL=https",
					fmt.Sprintf("N8N_PORT=%d", domain.N8NPort),
					"WEBHOOK_URL=" + cfg.URL(),
				},
				// bound to localhost, the tunnel is the only public entry
				Ports:     []string{fmt.Sprintf("127.0.0.1:%d:%d", domain.N8NPort, domain.N8NPort)},
				Volumes:   []string{"./n8n_data:/home/node/.n8n"},
				DependsOn: []string{"db"},
			},
		},
	}

	return yaml.Marshal(descriptor)
}

// StackConfig writes the Compose file and prepares the data directories.
// The descriptor is always rewritten whole, never merged.
func StackConfig() domain.Step {
	return domain.Step{
		ID:          StepStackConfig,
		Name:        "n8n stack configuration",
		Description: "Generate the docker-compose file and data directories",
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			cfg := ctx.Config

			for _, dir := range []string{cfg.StackDir, cfg.DataDir(), cfg.DBDataDir()} {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return domain.Fatalf("unable to create %s: %w", dir, err)
				}
			}

			// n8n runs as the node user inside the container
			if err := os.Chown(cfg.DataDir(), 1000, 1000); err != nil {
				return domain.Fatalf("unable to chown %s: %w", cfg.DataDir(), err)
			}

			data, err := BuildComposeFile(cfg)
			if err != nil {
				return domain.Fatalf("unable to render the compose file: %w", err)
			}
			if err := os.WriteFile(cfg.ComposeFile(), data, 0644); err != nil {
				return domain.Fatalf("unable to write %s: %w", cfg.ComposeFile(), err)
			}

			fmt.Printf(" %s %s written\n", color.GreenString("✓"), cfg.ComposeFile())
			return domain.Success()
		},
	}
}
