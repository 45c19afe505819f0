package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	enumspb "go.temporal.io/api/enums/v1"

	"nacsos/internal/activities"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func importEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ImportWorkflow)
	registerActivityName(env, "MarkImportStartedActivity", func(context.Context, activities.MarkImportStartedInput) (activities.MarkImportStartedOutput, error) {
		return activities.MarkImportStartedOutput{}, nil
	})
	registerActivityName(env, "ImportItemsActivity", func(context.Context, activities.ImportItemsInput) (activities.ImportItemsOutput, error) {
		return activities.ImportItemsOutput{}, nil
	})
	registerActivityName(env, "MarkImportFinishedActivity", func(context.Context, activities.MarkImportFinishedInput) error { return nil })
	return env
}

func TestImportWorkflowSuccess(t *testing.T) {
	env := importEnv(t)

	env.OnActivity("MarkImportStartedActivity", mock.Anything, activities.MarkImportStartedInput{
		ImportID:       "imp-1",
		PipelineTaskID: "default-test-workflow-id",
	}).Return(activities.MarkImportStartedOutput{ProjectID: "p1", ImportType: "scopus_csv"}, nil)
	env.OnActivity("ImportItemsActivity", mock.Anything, activities.ImportItemsInput{ImportID: "imp-1"}).
		Return(activities.ImportItemsOutput{Imported: 10, Updated: 2, Linked: 12}, nil)
	env.OnActivity("MarkImportFinishedActivity", mock.Anything, activities.MarkImportFinishedInput{ImportID: "imp-1"}).
		Return(nil)

	env.ExecuteWorkflow(ImportWorkflow, ImportInput{ImportID: "imp-1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "finished", out)

	resp, err := env.QueryWorkflow(QueryGetImportProgress)
	require.NoError(t, err)
	var progress ImportProgress
	require.NoError(t, resp.Get(&progress))
	require.Equal(t, "finished", progress.Stage)
	require.Equal(t, 10, progress.Imported)
	require.Equal(t, 2, progress.Updated)
	require.Equal(t, 12, progress.Linked)
}

func TestImportWorkflowFetchFailureEndsGracefully(t *testing.T) {
	env := importEnv(t)

	env.OnActivity("MarkImportStartedActivity", mock.Anything, mock.Anything).
		Return(activities.MarkImportStartedOutput{}, nil)
	env.OnActivity("ImportItemsActivity", mock.Anything, mock.Anything).
		Return(activities.ImportItemsOutput{}, errors.New("scopus responded with status 401"))

	env.ExecuteWorkflow(ImportWorkflow, ImportInput{ImportID: "imp-1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)

	resp, err := env.QueryWorkflow(QueryGetImportProgress)
	require.NoError(t, err)
	var progress ImportProgress
	require.NoError(t, resp.Get(&progress))
	require.Equal(t, "failed", progress.Stage)
	require.Contains(t, progress.Error, "401")
}

func TestImportWorkflowParallelImportRefused(t *testing.T) {
	env := importEnv(t)

	env.OnActivity("MarkImportStartedActivity", mock.Anything, mock.Anything).
		Return(activities.MarkImportStartedOutput{}, errors.New("another import is already running"))

	env.ExecuteWorkflow(ImportWorkflow, ImportInput{ImportID: "imp-1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
}

func TestResolveWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ResolveWorkflow)
	registerActivityName(env, "ResolveScopeActivity", func(context.Context, activities.ResolveScopeInput) (activities.ResolveScopeOutput, error) {
		return activities.ResolveScopeOutput{}, nil
	})
	env.OnActivity("ResolveScopeActivity", mock.Anything, activities.ResolveScopeInput{ScopeID: "scope-1", Name: "round 1"}).
		Return(activities.ResolveScopeOutput{MetaID: "meta-1"}, nil)

	env.ExecuteWorkflow(ResolveWorkflow, ResolveInput{ScopeID: "scope-1", Name: "round 1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "meta-1", out)
}

func TestAssignmentWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(AssignmentWorkflow)
	registerActivityName(env, "GenerateAssignmentsActivity", func(context.Context, activities.GenerateAssignmentsInput) (activities.GenerateAssignmentsOutput, error) {
		return activities.GenerateAssignmentsOutput{}, nil
	})
	env.OnActivity("GenerateAssignmentsActivity", mock.Anything, activities.GenerateAssignmentsInput{ScopeID: "scope-1"}).
		Return(activities.GenerateAssignmentsOutput{NumAssignments: 42}, nil)

	env.ExecuteWorkflow(AssignmentWorkflow, AssignmentInput{ScopeID: "scope-1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out int
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, 42, out)
}

func TestStateLabel(t *testing.T) {
	require.Equal(t, "running", stateLabel(enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING))
	require.Equal(t, "completed", stateLabel(enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED))
	require.Equal(t, "failed", stateLabel(enumspb.WORKFLOW_EXECUTION_STATUS_FAILED))
	require.Equal(t, "unknown", stateLabel(enumspb.WORKFLOW_EXECUTION_STATUS_UNSPECIFIED))
}
