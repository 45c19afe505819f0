package models

import "time"

// LabelKind defines which value column an annotation for a label fills:
//   - bool: value_bool, binary labels
//   - int / float: value_int / value_float, extracted numbers
//   - str: value_str, free text
//   - single: value_int, one choice out of a list (stores the choice value)
//   - multi: one annotation row per chosen value, distinguished via repeat
//   - intext: value_str plus text offsets into the item text
type LabelKind string

const (
	LabelKindBool   LabelKind = "bool"
	LabelKindInt    LabelKind = "int"
	LabelKindFloat  LabelKind = "float"
	LabelKindStr    LabelKind = "str"
	LabelKindSingle LabelKind = "single"
	LabelKindMulti  LabelKind = "multi"
	LabelKindInText LabelKind = "intext"
)

// SchemeLabelChoice is one selectable option for single/multi labels.
// Choices may carry child labels that only apply when the choice is picked.
type SchemeLabelChoice struct {
	Name  string `json:"name"`
	Hint  string `json:"hint,omitempty"`
	Value int    `json:"value"`

	Children []SchemeLabel `json:"children,omitempty"`
}

// SchemeLabel defines one attribute annotators fill in. Key uniqueness within
// a scheme is not enforced by the database and has to be ensured upstream.
type SchemeLabel struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	Hint string `json:"hint,omitempty"`

	// MaxRepeat allows repeated annotations for the same key
	// (primary/secondary/...); 1 means no repetition.
	MaxRepeat int  `json:"max_repeat"`
	Required  bool `json:"required"`

	// Dropdown renders choices as a searchable dropdown instead of a list.
	Dropdown bool `json:"dropdown,omitempty"`

	Kind    LabelKind           `json:"kind"`
	Choices []SchemeLabelChoice `json:"choices,omitempty"`
}

// AnnotationScheme defines the attribute vocabulary for annotation work in a
// project. Schemes are never shared between projects; technically identical
// schemes are stored as copies.
type AnnotationScheme struct {
	SchemeID  string `json:"annotation_scheme_id"`
	ProjectID string `json:"project_id"`

	// Name may be shown to annotators.
	Name string `json:"name"`
	// Description doubles as annotator instructions, Markdown formatted.
	Description string `json:"description,omitempty"`

	Labels []SchemeLabel `json:"labels"`

	TimeCreated time.Time  `json:"time_created"`
	TimeUpdated *time.Time `json:"time_updated,omitempty"`
}

// ScopeConfigType discriminates AssignmentScopeConfig variants.
type ScopeConfigType string

const (
	ScopeConfigRandom          ScopeConfigType = "random"
	ScopeConfigRandomExclusion ScopeConfigType = "random_exclusion"
)

// AssignmentScopeConfig stores the parameters used when generating the
// assignments of a scope, kept for future reference and reproducibility.
type AssignmentScopeConfig struct {
	ConfigType ScopeConfigType `json:"config_type"`

	// Users is the pool of annotator user IDs.
	Users []string `json:"users,omitempty"`

	NumItems              int   `json:"num_items"`
	MinAssignmentsPerItem int   `json:"min_assignments_per_item"`
	MaxAssignmentsPerItem int   `json:"max_assignments_per_item"`
	NumMultiCodedItems    int   `json:"num_multi_coded_items"`
	RandomSeed            int64 `json:"random_seed"`

	// ExcludedScopes lists scope IDs whose items must not be drawn again
	// (random_exclusion only).
	ExcludedScopes []string `json:"excluded_scopes,omitempty"`
}

// AssignmentScope groups a batch of assignments, so one scheme can be reused
// for several annotation rounds without copying it. Hierarchically:
// AnnotationScheme -> AssignmentScope -> Assignment -> Annotation.
type AssignmentScope struct {
	ScopeID  string `json:"assignment_scope_id"`
	SchemeID string `json:"annotation_scheme_id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Config *AssignmentScopeConfig `json:"config,omitempty"`

	TimeCreated time.Time `json:"time_created"`
}

// AssignmentStatus tracks how far an assignment has been worked off.
type AssignmentStatus string

const (
	AssignmentStatusOpen    AssignmentStatus = "OPEN"
	AssignmentStatusPartial AssignmentStatus = "PARTIAL"
	AssignmentStatusFull    AssignmentStatus = "FULL"
)

// Assignment requests one user to annotate one item following the scheme of
// its scope. An item may have several assignments, for double-coding or for
// different schemes; the project is implicit via the scheme.
type Assignment struct {
	AssignmentID string `json:"assignment_id"`
	ScopeID      string `json:"assignment_scope_id"`
	UserID       string `json:"user_id"`
	ItemID       string `json:"item_id"`
	SchemeID     string `json:"annotation_scheme_id"`

	Status AssignmentStatus `json:"status"`

	// Order of this assignment within its scope.
	Order int `json:"order"`
}

// Annotation is one user-assigned value for one label key on one item, in
// response to an assignment. User, item and scheme are implied by the
// assignment but replicated here in favour of fewer joins.
type Annotation struct {
	AnnotationID string `json:"annotation_id"`

	TimeCreated time.Time  `json:"time_created"`
	TimeUpdated *time.Time `json:"time_updated,omitempty"`

	AssignmentID string `json:"assignment_id"`
	UserID       string `json:"user_id"`
	ItemID       string `json:"item_id"`
	SchemeID     string `json:"annotation_scheme_id"`

	// Key refers to a SchemeLabel.Key in the scheme.
	Key string `json:"key"`
	// Repeat distinguishes primary/secondary/... annotations for the same
	// key; counting starts at 1.
	Repeat int `json:"repeat"`
	// Parent references the annotation of the parent label, for labels nested
	// under a choice.
	Parent string `json:"parent,omitempty"`

	// Exactly one of the value fields is set, matching the label kind.
	ValueBool  *bool    `json:"value_bool,omitempty"`
	ValueInt   *int     `json:"value_int,omitempty"`
	ValueFloat *float64 `json:"value_float,omitempty"`
	ValueStr   *string  `json:"value_str,omitempty"`

	// Offsets into Item.Text for in-text annotations.
	TextOffsetStart *int `json:"text_offset_start,omitempty"`
	TextOffsetStop  *int `json:"text_offset_stop,omitempty"`
}

// AnnotationValue is the value part of an annotation, detached from its
// bookkeeping columns. Used when resolving multiple annotations into one.
type AnnotationValue struct {
	ValueBool  *bool    `json:"value_bool,omitempty"`
	ValueInt   *int     `json:"value_int,omitempty"`
	ValueFloat *float64 `json:"value_float,omitempty"`
	ValueStr   *string  `json:"value_str,omitempty"`
}
