// Package annotate holds the database-free annotation logic: scheme
// flattening, annotation validation, assignment generation and resolving
// multiple users' annotations into one consolidated set.
package annotate

import "nacsos/internal/models"

// FlatChoice is a scheme choice with its nesting stripped.
type FlatChoice struct {
	Name  string `json:"name"`
	Hint  string `json:"hint,omitempty"`
	Value int    `json:"value"`
}

// FlatLabel is one label of a scheme with the hierarchy flattened away.
// Labels nested under a choice keep a pointer to their parent label key and
// the choice value that activates them.
type FlatLabel struct {
	Name      string           `json:"name"`
	Hint      string           `json:"hint,omitempty"`
	Key       string           `json:"key"`
	Required  bool             `json:"required"`
	MaxRepeat int              `json:"max_repeat"`
	Kind      models.LabelKind `json:"kind"`
	Choices   []FlatChoice     `json:"choices,omitempty"`

	ParentKey    string `json:"parent_key,omitempty"`
	ParentChoice *int   `json:"parent_choice,omitempty"`
}

// FlattenLabels walks a scheme's label tree depth first and returns the flat
// list, parents before their children.
func FlattenLabels(labels []models.SchemeLabel) []FlatLabel {
	out := make([]FlatLabel, 0, len(labels))
	var walk func(labels []models.SchemeLabel, parentKey string, parentChoice *int)
	walk = func(labels []models.SchemeLabel, parentKey string, parentChoice *int) {
		for _, l := range labels {
			flat := FlatLabel{
				Name:         l.Name,
				Hint:         l.Hint,
				Key:          l.Key,
				Required:     l.Required,
				MaxRepeat:    max(l.MaxRepeat, 1),
				Kind:         l.Kind,
				ParentKey:    parentKey,
				ParentChoice: parentChoice,
			}
			for _, c := range l.Choices {
				flat.Choices = append(flat.Choices, FlatChoice{Name: c.Name, Hint: c.Hint, Value: c.Value})
			}
			out = append(out, flat)

			for _, c := range l.Choices {
				if len(c.Children) > 0 {
					value := c.Value
					walk(c.Children, l.Key, &value)
				}
			}
		}
	}
	walk(labels, "", nil)
	return out
}

// LabelIndex maps label keys to their flattened definition.
func LabelIndex(labels []FlatLabel) map[string]FlatLabel {
	idx := make(map[string]FlatLabel, len(labels))
	for _, l := range labels {
		idx[l.Key] = l
	}
	return idx
}
