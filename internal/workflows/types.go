package workflows

type ImportInput struct {
	ImportID string `json:"import_id"`
}

type ImportProgress struct {
	ImportID string `json:"import_id"`
	Stage    string `json:"stage"`
	Imported int    `json:"imported"`
	Updated  int    `json:"updated"`
	Linked   int    `json:"linked"`
	Error    string `json:"error,omitempty"`
}

type ResolveInput struct {
	ScopeID string `json:"assignment_scope_id"`
	Name    string `json:"name"`
}

type AssignmentInput struct {
	ScopeID string `json:"assignment_scope_id"`
}
