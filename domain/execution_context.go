package domain

// ExecutionContext is threaded through every step of a run.
type ExecutionContext struct {
	Config *InstallConfig
	State  *StateStore

	// AssumeYes answers every confirmation prompt with its default,
	// for non-interactive runs.
	AssumeYes bool

	// TunnelID is filled by the tunnel provisioning step and reused by
	// the final report.
	TunnelID string

	// Degraded collects the notes of soft-failed steps for the final
	// report.
	Degraded []string
}

func (ctx *ExecutionContext) RecordDegraded(note string) {
	ctx.Degraded = append(ctx.Degraded, note)
}
