package workflows

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker) {
	w.RegisterWorkflow(ImportWorkflow)
	w.RegisterWorkflow(AssignmentWorkflow)
	w.RegisterWorkflow(ResolveWorkflow)
}
