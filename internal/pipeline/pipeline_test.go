package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingStep(name string, order *[]string, err error) Step {
	return Step{
		Name: name,
		Action: func(context.Context) error {
			*order = append(*order, name)
			return err
		},
	}
}

func TestExecutor_EmptyPipeline(t *testing.T) {
	assert.NoError(t, NewExecutor().Run(context.Background(), nil))
}

func TestExecutor_RunsInOrder(t *testing.T) {
	var order []string
	steps := []Step{
		recordingStep("prerequisites", &order, nil),
		recordingStep("download", &order, nil),
		recordingStep("build", &order, nil),
	}

	require.NoError(t, NewExecutor().Run(context.Background(), steps))
	assert.Equal(t, []string{"prerequisites", "download", "build"}, order)
}

func TestExecutor_StopsAtFirstFailure(t *testing.T) {
	var order []string
	boom := errors.New("make: *** [all] Error 2")
	steps := []Step{
		recordingStep("configure", &order, nil),
		recordingStep("build", &order, boom),
		recordingStep("register-module", &order, nil),
		recordingStep("shell-profile", &order, nil),
	}

	err := NewExecutor().Run(context.Background(), steps)
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "build", stepErr.Step)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), `"build"`)
	assert.Contains(t, err.Error(), "Error 2")
	assert.Equal(t, []string{"configure", "build"}, order)
}

func TestExecutor_SkipIf(t *testing.T) {
	var order []string
	skipped := recordingStep("environment-modules", &order, nil)
	evaluated := false
	skipped.SkipIf = func(context.Context) bool {
		evaluated = true
		return true
	}
	kept := recordingStep("download", &order, nil)
	kept.SkipIf = func(context.Context) bool { return false }

	require.NoError(t, NewExecutor().Run(context.Background(), []Step{skipped, kept}))
	assert.True(t, evaluated)
	assert.Equal(t, []string{"download"}, order)
}

func TestExecutor_SkipIfEvaluatedAfterEarlierSteps(t *testing.T) {
	// a later predicate must observe the effects of earlier steps
	ready := false
	var order []string
	first := Step{Name: "install", Action: func(context.Context) error {
		ready = true
		order = append(order, "install")
		return nil
	}}
	second := recordingStep("install-again", &order, nil)
	second.SkipIf = func(context.Context) bool { return ready }

	require.NoError(t, NewExecutor().Run(context.Background(), []Step{first, second}))
	assert.Equal(t, []string{"install"}, order)
}

func TestExecutor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var order []string
	err := NewExecutor().Run(ctx, []Step{recordingStep("download", &order, nil)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, order)
}

func TestExecutor_Describe(t *testing.T) {
	var order []string
	skipped := recordingStep("environment-modules", &order, nil)
	skipped.SkipIf = func(context.Context) bool { return true }
	steps := []Step{
		recordingStep("prerequisites", &order, nil),
		skipped,
		recordingStep("download", &order, nil),
	}

	names := NewExecutor().Describe(context.Background(), steps)
	assert.Equal(t, []string{"prerequisites", "download"}, names)
	assert.Empty(t, order, "Describe must not run actions")
}
