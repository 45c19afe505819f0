package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.MarkImportStartedActivity)
	w.RegisterActivity(a.ImportItemsActivity)
	w.RegisterActivity(a.MarkImportFinishedActivity)
	w.RegisterActivity(a.GenerateAssignmentsActivity)
	w.RegisterActivity(a.ResolveScopeActivity)
}
