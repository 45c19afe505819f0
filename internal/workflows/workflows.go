package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"nacsos/internal/activities"
)

const (
	QueryGetImportProgress = "GetImportProgress"

	stagePending  = "pending"
	stageFetching = "fetching"
	stageFinished = "finished"
	stageFailed   = "failed"
)

// ImportWorkflow runs one import end to end: claim the import row, fetch and
// merge the source records, mark the run finished. The fetch activity
// heartbeats but is not retried as a whole, since a replayed API fetch would
// re-link half the batch; failures leave the import claimed and unfinished
// for inspection.
func ImportWorkflow(ctx workflow.Context, input ImportInput) (string, error) {
	progress := ImportProgress{ImportID: input.ImportID, Stage: stagePending}
	if err := workflow.SetQueryHandler(ctx, QueryGetImportProgress, func() (ImportProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	info := workflow.GetInfo(ctx)

	markCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	})
	if err := workflow.ExecuteActivity(markCtx, "MarkImportStartedActivity", activities.MarkImportStartedInput{
		ImportID:       input.ImportID,
		PipelineTaskID: info.WorkflowExecution.ID,
	}).Get(ctx, nil); err != nil {
		progress.Stage = stageFailed
		progress.Error = err.Error()
		return stageFailed, nil
	}

	progress.Stage = stageFetching
	fetchCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 6 * time.Hour,
		HeartbeatTimeout:    5 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	var counts activities.ImportItemsOutput
	if err := workflow.ExecuteActivity(fetchCtx, "ImportItemsActivity", activities.ImportItemsInput{
		ImportID: input.ImportID,
	}).Get(ctx, &counts); err != nil {
		progress.Stage = stageFailed
		progress.Error = err.Error()
		return stageFailed, nil
	}
	progress.Imported = counts.Imported
	progress.Updated = counts.Updated
	progress.Linked = counts.Linked

	if err := workflow.ExecuteActivity(markCtx, "MarkImportFinishedActivity", activities.MarkImportFinishedInput{
		ImportID: input.ImportID,
	}).Get(ctx, nil); err != nil {
		progress.Stage = stageFailed
		progress.Error = err.Error()
		return stageFailed, nil
	}

	progress.Stage = stageFinished
	return stageFinished, nil
}

// AssignmentWorkflow generates the assignments of a scope as a pipeline task.
func AssignmentWorkflow(ctx workflow.Context, input AssignmentInput) (int, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	var out activities.GenerateAssignmentsOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateAssignmentsActivity", activities.GenerateAssignmentsInput{
		ScopeID: input.ScopeID,
	}).Get(ctx, &out); err != nil {
		return 0, err
	}
	return out.NumAssignments, nil
}

// ResolveWorkflow consolidates a scope's annotations into a bot annotation
// batch via majority vote.
func ResolveWorkflow(ctx workflow.Context, input ResolveInput) (string, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	})
	var out activities.ResolveScopeOutput
	if err := workflow.ExecuteActivity(ctx, "ResolveScopeActivity", activities.ResolveScopeInput{
		ScopeID: input.ScopeID,
		Name:    input.Name,
	}).Get(ctx, &out); err != nil {
		return "", err
	}
	return out.MetaID, nil
}
