package models

import "time"

// ImportType defines which importer handles an import.
type ImportType string

const (
	ImportTypeScript    ImportType = "script"
	ImportTypeJSONL     ImportType = "jsonl"
	ImportTypeScopusCSV ImportType = "scopus_csv"
	ImportTypeScopusAPI ImportType = "scopus_api"
	ImportTypeOpenAlex  ImportType = "openalex"
	ImportTypeWoS       ImportType = "wos"
	ImportTypeTwitter   ImportType = "twitter"
	ImportTypePDF       ImportType = "pdf"
)

// ImportConfig stores the parameters of an import run. Which fields apply
// depends on the import type.
type ImportConfig struct {
	// Query for API-backed imports (Scopus search query, OpenAlex filter).
	Query string `json:"query,omitempty"`
	// Path to the source file for file-backed imports.
	Path string `json:"path,omitempty"`
	// APIKey alias resolved from the environment, never the key itself.
	APIKey string `json:"api_key,omitempty"`
	// DedupByDOI additionally requires DOI equality when matching duplicates.
	DedupByDOI bool `json:"dedup_by_doi,omitempty"`
}

// Import records one data ingest into a project: what was fetched, by whom,
// when, and with which configuration. A re-run of the same import re-links
// matched items instead of duplicating them.
type Import struct {
	ImportID string `json:"import_id"`
	// UserID may be empty when the import was run by a script.
	UserID    string `json:"user_id,omitempty"`
	ProjectID string `json:"project_id"`

	// PipelineTaskID is the workflow ID when this import runs as a pipeline.
	PipelineTaskID string `json:"pipeline_task_id,omitempty"`

	Name        string `json:"name"`
	Description string `json:"description"`

	Type   ImportType    `json:"type"`
	Config *ImportConfig `json:"config,omitempty"`

	TimeCreated  time.Time  `json:"time_created"`
	TimeStarted  *time.Time `json:"time_started,omitempty"`
	TimeFinished *time.Time `json:"time_finished,omitempty"`
}

// ImportItemType qualifies an import/item link: explicit when the item itself
// matched the query, implicit when it was only pulled in via context (e.g. a
// referenced article or the rest of a conversation).
type ImportItemType string

const (
	ImportItemExplicit ImportItemType = "explicit"
	ImportItemImplicit ImportItemType = "implicit"
)

// ImportItem links an item to the import that (re-)fetched it. Rows are also
// written when the item already existed, to keep track of query coverage.
type ImportItem struct {
	ImportID string         `json:"import_id"`
	ItemID   string         `json:"item_id"`
	Type     ImportItemType `json:"type"`
	// TimeCreated is when this item was imported, not when the run started.
	TimeCreated time.Time `json:"time_created"`
}
