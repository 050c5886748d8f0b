package orchestrator

import (
	"time"

	"github.com/agenthive/hive/core"
)

// aggregateResults merges per-subtask outcomes into one aggregate. Results
// are folded in topological order, generation by generation, so the merged
// payload of a linear pipeline is dominated by its final stage. Failed
// subtasks contribute an itemized error and nothing to the merged payload.
func aggregateResults(generations [][]string, results map[string]core.ExecutionResult) core.AggregateResult {
	agg := core.AggregateResult{
		Result: make(map[string]any),
	}

	var total time.Duration
	for _, generation := range generations {
		for _, id := range generation {
			res, ok := results[id]
			if !ok {
				continue
			}
			agg.SubtaskCount++
			total += res.Duration

			if res.Success {
				agg.Succeeded++
				for k, v := range res.Result {
					agg.Result[k] = v
				}
				continue
			}
			agg.Failed++
			agg.Errors = append(agg.Errors, core.SubtaskError{
				SubtaskID: res.SubtaskID,
				Message:   res.Error,
			})
		}
	}

	agg.Status = core.Classify(agg.Succeeded, agg.Failed)
	agg.TotalDuration = total
	if agg.SubtaskCount > 0 {
		agg.SuccessRate = float64(agg.Succeeded) / float64(agg.SubtaskCount)
		agg.AverageDuration = total / time.Duration(agg.SubtaskCount)
	}
	return agg
}
