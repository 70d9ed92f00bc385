package workflows

import (
	"context"
	"errors"
	"testing"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/citysim/histmap/internal/core/domain"
)

type stubSimulations struct {
	sims []domain.Simulation
	err  error
}

func (s *stubSimulations) ByCity(ctx context.Context, cityID int64) ([]domain.Simulation, error) {
	return s.sims, s.err
}

type stubWarmer struct {
	counts map[int64]int
}

func (s *stubWarmer) ForSimulation(ctx context.Context, simulationID int64, bbox *domain.BoundingBox) (*domain.FeatureCollection, error) {
	if bbox != nil {
		return nil, errors.New("warm-up must request the unfiltered collection")
	}
	n, ok := s.counts[simulationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]domain.Feature, n),
		Metadata: &domain.CollectionMetadata{SimulationID: simulationID, Count: n},
	}, nil
}

func TestListCitySimulations(t *testing.T) {
	a := &WarmActivities{Simulations: &stubSimulations{sims: []domain.Simulation{{ID: 4}, {ID: 9}}}}

	ids, err := a.ListCitySimulations(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 9 {
		t.Errorf("unexpected ids %v", ids)
	}

	a.Simulations = &stubSimulations{err: domain.ErrNotFound}
	if _, err := a.ListCitySimulations(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestWarmSimulation(t *testing.T) {
	a := &WarmActivities{GeoObjects: &stubWarmer{counts: map[int64]int{4: 12}}}

	n, err := a.WarmSimulation(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 12 {
		t.Errorf("expected 12 features, got %d", n)
	}

	if _, err := a.WarmSimulation(context.Background(), 5); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestWarmCityWorkflow(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(func(ctx context.Context, cityID int64) ([]int64, error) {
		return []int64{4, 9, 13}, nil
	}, activity.RegisterOptions{Name: "ListCitySimulations"})
	env.RegisterActivityWithOptions(func(ctx context.Context, simulationID int64) (int, error) {
		if simulationID == 13 {
			return 0, temporal.NewNonRetryableApplicationError("boom", "test", nil)
		}
		return int(simulationID), nil
	}, activity.RegisterOptions{Name: "WarmSimulation"})

	env.ExecuteWorkflow(WarmCityWorkflow, WarmCityInput{CityID: 1})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}

	var result WarmCityResult
	if err := env.GetWorkflowResult(&result); err != nil {
		t.Fatal(err)
	}
	if result.Simulations != 2 || result.Features != 13 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(result.Failed) != 1 || result.Failed[0] != 13 {
		t.Errorf("expected simulation 13 to fail, got %v", result.Failed)
	}
}

func TestWarmCityWorkflow_ListFails(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(func(ctx context.Context, cityID int64) ([]int64, error) {
		return nil, temporal.NewNonRetryableApplicationError("city not found", "not_found", nil)
	}, activity.RegisterOptions{Name: "ListCitySimulations"})
	env.RegisterActivityWithOptions(func(ctx context.Context, simulationID int64) (int, error) {
		return 0, nil
	}, activity.RegisterOptions{Name: "WarmSimulation"})

	env.ExecuteWorkflow(WarmCityWorkflow, WarmCityInput{CityID: 99})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if env.GetWorkflowError() == nil {
		t.Error("expected workflow error")
	}
}
