package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// WarmCityInput is the input for the warm-up workflow.
type WarmCityInput struct {
	CityID int64
}

// WarmCityResult summarises a warm-up run.
type WarmCityResult struct {
	Simulations int
	Features    int
	Failed      []int64
}

// WarmCityWorkflow assembles the collection of every simulation of a city so
// that the first API reads hit the cache. One failing simulation does not
// stop the others.
func WarmCityWorkflow(ctx workflow.Context, input WarmCityInput) (*WarmCityResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting warm-up workflow", "cityID", input.CityID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var ids []int64
	if err := workflow.ExecuteActivity(ctx, "ListCitySimulations", input.CityID).Get(ctx, &ids); err != nil {
		return nil, err
	}

	futures := make([]workflow.Future, len(ids))
	for i, id := range ids {
		futures[i] = workflow.ExecuteActivity(ctx, "WarmSimulation", id)
	}

	result := &WarmCityResult{}
	for i, f := range futures {
		var count int
		if err := f.Get(ctx, &count); err != nil {
			logger.Warn("warm-up failed", "simulationID", ids[i], "error", err)
			result.Failed = append(result.Failed, ids[i])
			continue
		}
		result.Simulations++
		result.Features += count
	}

	logger.Info("Warm-up finished", "simulations", result.Simulations, "features", result.Features, "failed", len(result.Failed))
	return result, nil
}
