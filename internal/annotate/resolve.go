package annotate

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

// MajorityVote resolves the annotations of several users into one
// BotAnnotation per item, key and value slot by counting votes. Confidence is
// the vote share of the winning value; ties break towards the smaller value
// so the outcome is deterministic.
//
// Supported kinds are bool, int, single and multi. For multi labels every
// value picked by at least half of the item's annotators survives, stored as
// repeated bot annotations.
func MajorityVote(idx map[string]FlatLabel, annotations []models.Annotation, metaID string) ([]models.BotAnnotation, error) {
	if len(annotations) == 0 {
		return nil, util.ErrEmptyAnnotations
	}

	type slot struct {
		itemID string
		key    string
	}
	votes := make(map[slot]map[int]int)
	voters := make(map[slot]map[string]bool)
	var order []slot

	for _, a := range annotations {
		label, ok := idx[a.Key]
		if !ok {
			return nil, fmt.Errorf("annotation key %q not defined in scheme", a.Key)
		}
		var value int
		switch label.Kind {
		case models.LabelKindBool:
			if a.ValueBool == nil {
				continue
			}
			if *a.ValueBool {
				value = 1
			}
		case models.LabelKindInt, models.LabelKindSingle, models.LabelKindMulti:
			if a.ValueInt == nil {
				continue
			}
			value = *a.ValueInt
		default:
			return nil, fmt.Errorf("majority vote for kind %q not supported", label.Kind)
		}

		s := slot{itemID: a.ItemID, key: a.Key}
		if votes[s] == nil {
			votes[s] = make(map[int]int)
			voters[s] = make(map[string]bool)
			order = append(order, s)
		}
		votes[s][value]++
		voters[s][a.UserID] = true
	}

	var out []models.BotAnnotation
	for _, s := range order {
		label := idx[s.key]
		numVoters := len(voters[s])

		if label.Kind == models.LabelKindMulti {
			values := sortedValues(votes[s])
			repeat := 1
			for _, v := range values {
				n := votes[s][v]
				if n*2 < numVoters {
					continue
				}
				out = append(out, botAnnotation(metaID, s.itemID, s.key, repeat, label.Kind, v,
					float64(n)/float64(numVoters)))
				repeat++
			}
			continue
		}

		winner, n := 0, 0
		for _, v := range sortedValues(votes[s]) {
			if votes[s][v] > n {
				winner, n = v, votes[s][v]
			}
		}
		out = append(out, botAnnotation(metaID, s.itemID, s.key, 1, label.Kind, winner,
			float64(n)/float64(numVoters)))
	}
	return out, nil
}

func sortedValues(counts map[int]int) []int {
	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)
	return values
}

func botAnnotation(metaID, itemID, key string, repeat int, kind models.LabelKind, value int, confidence float64) models.BotAnnotation {
	ba := models.BotAnnotation{
		BotAnnotationID: uuid.NewString(),
		MetaID:          metaID,
		ItemID:          itemID,
		Key:             key,
		Repeat:          repeat,
		Confidence:      &confidence,
	}
	if kind == models.LabelKindBool {
		b := value == 1
		ba.ValueBool = &b
	} else {
		v := value
		ba.ValueInt = &v
	}
	return ba
}
