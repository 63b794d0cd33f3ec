package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"
	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/utils"

	"github.com/Songmu/prompter"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// tunnelIDPattern is the shape cloudflared uses for tunnel identifiers
// (8-4-4-4-12 lowercase hex groups). Manual entry is validated against the
// same pattern as automatic extraction.
var tunnelIDPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// credentialSearchDirs are the locations cloudflared may have written the
// tunnel credentials file to, in search order.
var credentialSearchDirs = []string{"/root/.cloudflared", domain.CloudflaredDir}

// ExtractTunnelID returns the first tunnel identifier found in CLI output.
func ExtractTunnelID(output string) (string, bool) {
	id := tunnelIDPattern.FindString(output)
	return id, id != ""
}

// IsTunnelID reports whether a whole string is a valid tunnel identifier.
func IsTunnelID(s string) bool {
	match := tunnelIDPattern.FindString(s)
	return match == strings.TrimSpace(s) && match != ""
}

// TunnelIDFromList scans `cloudflared tunnel list` output for the row
// whose name column matches exactly, and extracts the identifier from
// that row. Substring hits on other names do not count.
func TunnelIDFromList(output, name string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		matched := false
		for _, field := range fields {
			if field == name {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if id, ok := ExtractTunnelID(line); ok {
			return id, true
		}
	}
	return "", false
}

// FindCredentialsFile searches the given directories for a JSON file whose
// name contains the tunnel identifier. An unrelated JSON file is never
// selected.
func FindCredentialsFile(dirs []string, tunnelID string) (string, bool) {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if filepath.Ext(name) == ".json" && strings.Contains(name, tunnelID) {
				return filepath.Join(dir, name), true
			}
		}
	}
	return "", false
}

type ingressRule struct {
	Hostname string `yaml:"hostname,omitempty"`
	Service  string `yaml:"service"`
}

type tunnelDescriptor struct {
	Tunnel          string        `yaml:"tunnel"`
	CredentialsFile string        `yaml:"credentials-file"`
	Ingress         []ingressRule `yaml:"ingress"`
}

// BuildTunnelConfig renders the cloudflared ingress configuration: the
// chosen hostname routed to the local n8n port, then a catch-all 404.
func BuildTunnelConfig(tunnelID, hostname string) ([]byte, error) {
	descriptor := tunnelDescriptor{
		Tunnel:          tunnelID,
		CredentialsFile: filepath.Join(domain.CloudflaredDir, tunnelID+".json"),
		Ingress: []ingressRule{
			{Hostname: hostname, Service: fmt.Sprintf("http://localhost:%d", domain.N8NPort)},
			{Service: "http_status:404"},
		},
	}

	return yaml.Marshal(descriptor)
}

// TunnelSetup provisions the Cloudflare Tunnel: login, tunnel resolution
// (reuse by name or create), credentials normalization, ingress config and
// DNS route. Every value that cannot be extracted automatically degrades
// to a validated manual prompt instead of failing silently.
func TunnelSetup() domain.Step {
	return domain.Step{
		ID:          StepTunnel,
		Name:        "Cloudflare Tunnel provisioning",
		Description: "Login, create or reuse the tunnel, configure ingress and DNS",
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			cfg := ctx.Config

			if err := ensureCertificate(ctx); err != nil {
				return domain.Fatal(err)
			}

			tunnelID, result := resolveTunnelID(ctx)
			if result != nil {
				return *result
			}
			ctx.TunnelID = tunnelID
			fmt.Printf(" %s tunnel id: %s\n", color.GreenString("✓"), tunnelID)

			if err := normalizeCredentials(ctx, tunnelID); err != nil {
				return domain.Fatal(err)
			}

			data, err := BuildTunnelConfig(tunnelID, cfg.Domain)
			if err != nil {
				return domain.Fatalf("unable to render the tunnel config: %w", err)
			}
			configPath := filepath.Join(domain.CloudflaredDir, "config.yml")
			if err := os.WriteFile(configPath, data, 0644); err != nil {
				return domain.Fatalf("unable to write %s: %w", configPath, err)
			}
			fmt.Printf(" %s %s written\n", color.GreenString("✓"), configPath)

			route := domain.NewCommand([]string{"cloudflared", "tunnel", "route", "dns", cfg.TunnelName, cfg.Domain})
			if err := route.Execute(); err != nil {
				// usually a pre-existing conflicting DNS record
				return domain.Degraded(
					fmt.Sprintf("DNS route for %s could not be registered; add a CNAME %s -> %s.cfargotunnel.com in the Cloudflare dashboard", cfg.Domain, cfg.Domain, tunnelID),
					err)
			}

			return domain.Success()
		},
	}
}

// ensureCertificate makes sure the signing certificate exists, triggering
// the interactive browser login when it does not.
func ensureCertificate(ctx *domain.ExecutionContext) error {
	if _, err := os.Stat(domain.CloudflaredCert); err == nil {
		return nil
	}

	fmt.Println("\n A browser window will open to authorize this machine with Cloudflare.")
	if !ctx.AssumeYes && !prompter.YN("Proceed with the Cloudflare login?", true) {
		return fmt.Errorf("tunnel setup requires a Cloudflare login")
	}

	login := domain.NewCommand([]string{"cloudflared", "tunnel", "login"})
	login.Execute()

	if _, err := os.Stat(domain.CloudflaredCert); err != nil {
		return fmt.Errorf("no certificate found at %s after login", domain.CloudflaredCert)
	}
	return nil
}

// resolveTunnelID reuses an existing tunnel with the configured name or
// creates a new one, extracting the identifier from the CLI output. When
// extraction fails it asks for a manual identifier and re-validates it.
// Returns a non-nil result on failure.
func resolveTunnelID(ctx *domain.ExecutionContext) (string, *domain.StepResult) {
	name := ctx.Config.TunnelName

	if listing, err := domain.NewCommand([]string{"cloudflared", "tunnel", "list"}).GetResult(); err == nil {
		if id, ok := TunnelIDFromList(listing, name); ok {
			fmt.Printf(" reusing existing tunnel '%s'\n", name)
			return id, nil
		}
	}

	output, err := domain.NewCommand([]string{"cloudflared", "tunnel", "create", name}).GetResult()
	if err == nil {
		fmt.Println(output)
		if id, ok := ExtractTunnelID(output); ok {
			return id, nil
		}
	}

	if ctx.AssumeYes {
		result := domain.Fatalf("unable to determine the tunnel id for '%s'", name)
		return "", &result
	}

	fmt.Printf(" %s could not extract the tunnel id automatically\n", color.YellowString("!"))
	manual := strings.TrimSpace(prompter.Prompt("Enter the tunnel id (from 'cloudflared tunnel list')", ""))
	if !IsTunnelID(manual) {
		result := domain.Fatalf("'%s' is not a valid tunnel id", manual)
		return "", &result
	}

	return manual, nil
}

// normalizeCredentials copies the tunnel credentials file to its fixed
// location named after the identifier, with restrictive permissions. A
// stale file at the target is removed first, so re-runs overwrite cleanly.
func normalizeCredentials(ctx *domain.ExecutionContext, tunnelID string) error {
	source, ok := FindCredentialsFile(credentialSearchDirs, tunnelID)
	if !ok {
		if ctx.AssumeYes {
			return fmt.Errorf("no credentials file for tunnel %s found in %s", tunnelID, strings.Join(credentialSearchDirs, " or "))
		}

		fmt.Printf(" %s no credentials file for tunnel %s found in %s\n", color.YellowString("!"), tunnelID, strings.Join(credentialSearchDirs, " or "))
		manual := strings.TrimSpace(prompter.Prompt("Path to the tunnel credentials JSON file", ""))
		if _, err := os.Stat(manual); err != nil {
			return fmt.Errorf("credentials file %s does not exist", manual)
		}
		source = manual
	}

	if err := os.MkdirAll(domain.CloudflaredDir, 0755); err != nil {
		return fmt.Errorf("unable to create %s: %w", domain.CloudflaredDir, err)
	}

	target := filepath.Join(domain.CloudflaredDir, tunnelID+".json")
	if source == target {
		return os.Chmod(target, 0600)
	}

	os.Remove(target)
	if err := utils.CopyFileContents(source, target, 0600); err != nil {
		return fmt.Errorf("unable to copy the credentials file to %s: %w", target, err)
	}

	fmt.Printf(" %s credentials installed at %s\n", color.GreenString("✓"), target)
	return nil
}
