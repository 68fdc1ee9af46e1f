package analytics

import (
	"context"

	"github.com/mohitkumar/workflower/logger"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.uber.org/zap"
)

var (
	WorkItemTransitions = stats.Int64("workflower/workitem_transitions", "work item state transitions", stats.UnitDimensionless)
	ActiveInstances     = stats.Int64("workflower/active_instances", "process instances not completed", stats.UnitDimensionless)

	StateKey = tag.MustNewKey("state")

	WorkItemTransitionsView = &view.View{
		Name:        "workflower/workitem_transitions",
		Measure:     WorkItemTransitions,
		Description: "count of work item transitions by target state",
		TagKeys:     []tag.Key{StateKey},
		Aggregation: view.Count(),
	}
	ActiveInstancesView = &view.View{
		Name:        "workflower/active_instances",
		Measure:     ActiveInstances,
		Description: "last reported number of active process instances",
		Aggregation: view.LastValue(),
	}
)

func RegisterViews() error {
	return view.Register(WorkItemTransitionsView, ActiveInstancesView)
}

func recordTransition(state string) {
	err := stats.RecordWithTags(context.Background(), []tag.Mutator{tag.Upsert(StateKey, state)}, WorkItemTransitions.M(1))
	if err != nil {
		logger.Warn("error recording transition", zap.Error(err))
	}
}

func RecordActiveInstances(n int) {
	stats.Record(context.Background(), ActiveInstances.M(int64(n)))
}
