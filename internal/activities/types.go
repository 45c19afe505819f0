package activities

type MarkImportStartedInput struct {
	ImportID       string `json:"import_id"`
	PipelineTaskID string `json:"pipeline_task_id"`
}

type MarkImportStartedOutput struct {
	ProjectID  string `json:"project_id"`
	ImportType string `json:"import_type"`
}

type ImportItemsInput struct {
	ImportID string `json:"import_id"`
}

type ImportItemsOutput struct {
	// Imported counts newly created items, Updated items merged into an
	// existing duplicate. Both are linked to the import.
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Linked   int `json:"linked"`
}

type MarkImportFinishedInput struct {
	ImportID string `json:"import_id"`
}

type ResolveScopeInput struct {
	ScopeID string `json:"assignment_scope_id"`
	Name    string `json:"name"`
}

type ResolveScopeOutput struct {
	MetaID string `json:"bot_annotation_metadata_id"`
}

type GenerateAssignmentsInput struct {
	ScopeID string `json:"assignment_scope_id"`
}

type GenerateAssignmentsOutput struct {
	NumAssignments int `json:"num_assignments"`
}
