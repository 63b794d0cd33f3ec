package actions

import (
	"errors"
	"testing"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStep builds a step that records whether it ran and returns the
// given result.
func fakeStep(id domain.StepID, satisfied bool, result domain.StepResult, ran *[]domain.StepID) domain.Step {
	return domain.Step{
		ID:   id,
		Name: string(id),
		Check: func(ctx *domain.ExecutionContext) bool {
			return satisfied
		},
		Run: func(ctx *domain.ExecutionContext) domain.StepResult {
			*ran = append(*ran, id)
			return result
		},
	}
}

func TestRunStepsSkipsSatisfiedChecks(t *testing.T) {
	ran := []domain.StepID{}
	plan := []domain.Step{
		fakeStep("already-done", true, domain.Success(), &ran),
		fakeStep("pending", false, domain.Success(), &ran),
	}

	ctx := &domain.ExecutionContext{}
	require.NoError(t, runSteps(ctx, plan))
	assert.Equal(t, []domain.StepID{"pending"}, ran)
}

func TestRunStepsNilCheckAlwaysRuns(t *testing.T) {
	ran := []domain.StepID{}
	step := fakeStep("always", false, domain.Success(), &ran)
	step.Check = nil

	require.NoError(t, runSteps(&domain.ExecutionContext{}, []domain.Step{step}))
	assert.Equal(t, []domain.StepID{"always"}, ran)
}

func TestRunStepsFatalStopsTheSequence(t *testing.T) {
	ran := []domain.StepID{}
	plan := []domain.Step{
		fakeStep("first", false, domain.Success(), &ran),
		fakeStep("broken", false, domain.Fatal(errors.New("boom")), &ran),
		fakeStep("never-reached", false, domain.Success(), &ran),
	}

	err := runSteps(&domain.ExecutionContext{}, plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []domain.StepID{"first", "broken"}, ran)
}

func TestRunStepsHaltEndsCleanly(t *testing.T) {
	ran := []domain.StepID{}
	plan := []domain.Step{
		fakeStep("reboot-pending", false, domain.Halt(), &ran),
		fakeStep("never-reached", false, domain.Success(), &ran),
	}

	require.NoError(t, runSteps(&domain.ExecutionContext{}, plan))
	assert.Equal(t, []domain.StepID{"reboot-pending"}, ran)
}

func TestRunStepsDegradedIsRecordedAndContinues(t *testing.T) {
	ran := []domain.StepID{}
	plan := []domain.Step{
		fakeStep("soft-fail", false, domain.Degraded("service inactive, manual fallback available", errors.New("inactive")), &ran),
		fakeStep("next", false, domain.Success(), &ran),
	}

	ctx := &domain.ExecutionContext{}
	require.NoError(t, runSteps(ctx, plan))
	assert.Equal(t, []domain.StepID{"soft-fail", "next"}, ran)
	assert.Equal(t, []string{"service inactive, manual fallback available"}, ctx.Degraded)
}

func TestRunStepsRecoveredContinues(t *testing.T) {
	ran := []domain.StepID{}
	plan := []domain.Step{
		fakeStep("bumpy", false, domain.Recovered("started after an engine restart"), &ran),
		fakeStep("next", false, domain.Success(), &ran),
	}

	ctx := &domain.ExecutionContext{}
	require.NoError(t, runSteps(ctx, plan))
	assert.Equal(t, []domain.StepID{"bumpy", "next"}, ran)
	assert.Empty(t, ctx.Degraded)
}
