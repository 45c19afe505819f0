package models

// ProjectType defines what sort of data a project works with. All items in a
// project must share this type.
type ProjectType string

const (
	ProjectTypeBasic    ProjectType = "basic"
	ProjectTypeTwitter  ProjectType = "twitter"
	ProjectTypeAcademic ProjectType = "academic"
	ProjectTypePatents  ProjectType = "patents"
)

// Project is the container around which all annotation work is organised,
// e.g. all work for one paper or systematic review. Items live outside the
// project scope, but annotations and analysis outcomes are always constrained
// to one project.
type Project struct {
	ProjectID string `json:"project_id"`
	// Unique descriptive name for the project.
	Name string `json:"name"`
	// Optional description, may be Markdown formatted.
	Description string      `json:"description,omitempty"`
	Type        ProjectType `json:"type"`
}

// ProjectPermissions is the fine-grained per-user permission set for one
// project. The existence of a row implies basic access; `Owner` short-circuits
// all other flags. Users can always see and edit their own contributions,
// the read flags additionally expose other users' data.
type ProjectPermissions struct {
	ProjectPermissionID string `json:"project_permission_id"`
	ProjectID           string `json:"project_id"`
	UserID              string `json:"user_id"`

	Owner bool `json:"owner"`

	DatasetRead bool `json:"dataset_read"`
	DatasetEdit bool `json:"dataset_edit"`

	ImportsRead bool `json:"imports_read"`
	ImportsEdit bool `json:"imports_edit"`

	AnnotationsRead bool `json:"annotations_read"`
	AnnotationsEdit bool `json:"annotations_edit"`

	PipelinesRead bool `json:"pipelines_read"`
	PipelinesEdit bool `json:"pipelines_edit"`

	ArtefactsRead bool `json:"artefacts_read"`
	ArtefactsEdit bool `json:"artefacts_edit"`
}

// VirtualAdmin returns the all-permissions set used for superusers, which are
// not expected to have explicit permission rows for every project.
func VirtualAdmin(projectID, userID string) ProjectPermissions {
	return ProjectPermissions{
		ProjectID: projectID,
		UserID:    userID,
		Owner:     true,
		DatasetRead: true, DatasetEdit: true,
		ImportsRead: true, ImportsEdit: true,
		AnnotationsRead: true, AnnotationsEdit: true,
		PipelinesRead: true, PipelinesEdit: true,
		ArtefactsRead: true, ArtefactsEdit: true,
	}
}
