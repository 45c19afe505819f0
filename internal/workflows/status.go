package workflows

import (
	"context"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

// StartImport launches the import pipeline for an import row. The workflow ID
// is derived from the import ID so a run can be found again and a finished
// import can only be re-run after the previous attempt failed.
func StartImport(ctx context.Context, c client.Client, taskQueue, importID string) (string, error) {
	workflowID := "import-" + importID
	_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    workflowID,
		TaskQueue:             taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}, ImportWorkflow, ImportInput{ImportID: importID})
	if err != nil {
		return "", fmt.Errorf("start import workflow: %w", err)
	}
	return workflowID, nil
}

// ImportRunStatus combines the execution state of an import workflow with its
// live progress.
type ImportRunStatus struct {
	WorkflowID string         `json:"workflow_id"`
	State      string         `json:"state"`
	Running    bool           `json:"running"`
	Progress   ImportProgress `json:"progress"`
}

// DescribeImportRun reports where an import pipeline run currently stands.
// The progress query only succeeds while workers can still serve it; for
// closed runs the execution state alone is returned.
func DescribeImportRun(ctx context.Context, c client.Client, importID string) (ImportRunStatus, error) {
	workflowID := "import-" + importID
	desc, err := c.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		return ImportRunStatus{}, fmt.Errorf("describe import workflow: %w", err)
	}
	status := desc.GetWorkflowExecutionInfo().GetStatus()
	out := ImportRunStatus{
		WorkflowID: workflowID,
		State:      stateLabel(status),
		Running:    status == enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING,
	}

	resp, err := c.QueryWorkflow(ctx, workflowID, "", QueryGetImportProgress)
	if err == nil {
		_ = resp.Get(&out.Progress)
	}
	return out, nil
}

func stateLabel(status enumspb.WorkflowExecutionStatus) string {
	switch status {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return "running"
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return "completed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return "failed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return "canceled"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return "terminated"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return "timed_out"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return "continued_as_new"
	default:
		return "unknown"
	}
}
