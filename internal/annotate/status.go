package annotate

import "nacsos/internal/models"

// AssignmentStatusFor derives the status of an assignment from the
// annotations submitted for it. An assignment is FULL once every required
// top-level label has at least one annotation, PARTIAL when some but not all
// do, and OPEN without any annotations. Nested labels are ignored here since
// whether they apply depends on the chosen parent values.
func AssignmentStatusFor(labels []FlatLabel, annotations []models.Annotation) models.AssignmentStatus {
	if len(annotations) == 0 {
		return models.AssignmentStatusOpen
	}

	seen := make(map[string]bool, len(annotations))
	for _, a := range annotations {
		seen[a.Key] = true
	}

	required := 0
	covered := 0
	for _, l := range labels {
		if l.ParentKey != "" || !l.Required {
			continue
		}
		required++
		if seen[l.Key] {
			covered++
		}
	}
	if required == 0 || covered == required {
		return models.AssignmentStatusFull
	}
	return models.AssignmentStatusPartial
}
