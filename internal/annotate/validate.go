package annotate

import (
	"fmt"

	"nacsos/internal/models"
)

// ValidateAnnotation checks an annotation against the flattened labels of its
// scheme: the key exists, the repeat is within bounds, exactly the value
// column of the label kind is filled and choice values are defined.
func ValidateAnnotation(idx map[string]FlatLabel, ann *models.Annotation) error {
	label, ok := idx[ann.Key]
	if !ok {
		return fmt.Errorf("annotation key %q not defined in scheme", ann.Key)
	}
	if ann.Repeat < 1 || ann.Repeat > label.MaxRepeat {
		return fmt.Errorf("repeat %d for key %q outside 1..%d", ann.Repeat, ann.Key, label.MaxRepeat)
	}
	if label.ParentKey != "" && ann.Parent == "" {
		return fmt.Errorf("key %q requires a parent annotation for %q", ann.Key, label.ParentKey)
	}

	if n := countValues(ann); n != 1 {
		return fmt.Errorf("key %q: expected exactly one value, got %d", ann.Key, n)
	}

	switch label.Kind {
	case models.LabelKindBool:
		if ann.ValueBool == nil {
			return fmt.Errorf("key %q of kind bool needs value_bool", ann.Key)
		}
	case models.LabelKindInt:
		if ann.ValueInt == nil {
			return fmt.Errorf("key %q of kind int needs value_int", ann.Key)
		}
	case models.LabelKindFloat:
		if ann.ValueFloat == nil {
			return fmt.Errorf("key %q of kind float needs value_float", ann.Key)
		}
	case models.LabelKindStr:
		if ann.ValueStr == nil {
			return fmt.Errorf("key %q of kind str needs value_str", ann.Key)
		}
	case models.LabelKindSingle, models.LabelKindMulti:
		if ann.ValueInt == nil {
			return fmt.Errorf("key %q of kind %s needs value_int", ann.Key, label.Kind)
		}
		if !validChoice(label, *ann.ValueInt) {
			return fmt.Errorf("key %q: choice %d not defined in scheme", ann.Key, *ann.ValueInt)
		}
	case models.LabelKindInText:
		if ann.ValueStr == nil {
			return fmt.Errorf("key %q of kind intext needs value_str", ann.Key)
		}
		if ann.TextOffsetStart == nil || ann.TextOffsetStop == nil {
			return fmt.Errorf("key %q of kind intext needs text offsets", ann.Key)
		}
		if *ann.TextOffsetStart < 0 || *ann.TextOffsetStop <= *ann.TextOffsetStart {
			return fmt.Errorf("key %q: invalid text offsets [%d, %d)", ann.Key, *ann.TextOffsetStart, *ann.TextOffsetStop)
		}
	default:
		return fmt.Errorf("unknown label kind %q", label.Kind)
	}
	return nil
}

func countValues(ann *models.Annotation) int {
	n := 0
	if ann.ValueBool != nil {
		n++
	}
	if ann.ValueInt != nil {
		n++
	}
	if ann.ValueFloat != nil {
		n++
	}
	if ann.ValueStr != nil {
		n++
	}
	return n
}

func validChoice(label FlatLabel, value int) bool {
	for _, c := range label.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}
