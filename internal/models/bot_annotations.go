package models

import "time"

// BotKind indicates where a batch of automatic annotations came from.
type BotKind string

const (
	BotKindScript     BotKind = "SCRIPT"
	BotKindPipeline   BotKind = "PIPELINE"
	BotKindClassifier BotKind = "CLASSIFIER"
	BotKindResolve    BotKind = "RESOLVE"
)

// BotAnnotationMetaData records provenance for a batch of BotAnnotations and
// doubles as their grouping scope, e.g. one classification model applied in
// two contexts yields two metadata rows.
type BotAnnotationMetaData struct {
	MetaID    string  `json:"bot_annotation_metadata_id"`
	Name      string  `json:"name"`
	Kind      BotKind `json:"kind"`
	ProjectID string  `json:"project_id"`

	// Optional references to the human annotation context this batch relates
	// to, e.g. the scope whose annotations were resolved.
	ScopeID  string `json:"assignment_scope_id,omitempty"`
	SchemeID string `json:"annotation_scheme_id,omitempty"`

	Meta map[string]any `json:"meta,omitempty"`
}

// BotAnnotation is an automatically produced annotation. Unlike Annotation it
// needs no assignment; repeat can also be used to store ranked predictions.
type BotAnnotation struct {
	BotAnnotationID string `json:"bot_annotation_id"`
	MetaID          string `json:"bot_annotation_metadata_id"`

	TimeCreated time.Time  `json:"time_created"`
	TimeUpdated *time.Time `json:"time_updated,omitempty"`

	ItemID string `json:"item_id"`

	Key    string `json:"key,omitempty"`
	Repeat int    `json:"repeat"`

	ValueBool  *bool    `json:"value_bool,omitempty"`
	ValueInt   *int     `json:"value_int,omitempty"`
	ValueFloat *float64 `json:"value_float,omitempty"`
	ValueStr   *string  `json:"value_str,omitempty"`

	// Confidence score or probability reported by the underlying model.
	Confidence *float64 `json:"confidence,omitempty"`
}
