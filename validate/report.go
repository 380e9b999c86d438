package validate

import "github.com/tidwall/gjson"

// RoundReport is the validated result of one Analyze call.
type RoundReport struct {
	CompletenessScore  int
	RedundantNodeIDs   []string
	ContainersToExpand []string
	Suggestions        []string
}

// Report parses a raw analyze response. The score is clamped to 0..100;
// missing lists come back empty, not nil checks for callers.
func Report(raw string) (RoundReport, error) {
	doc, err := extract(raw)
	if err != nil {
		return RoundReport{}, err
	}

	score := int(gjson.Get(doc, "completeness_score").Int())
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return RoundReport{
		CompletenessScore:  score,
		RedundantNodeIDs:   stringList(gjson.Get(doc, "redundant_node_ids")),
		ContainersToExpand: stringList(gjson.Get(doc, "containers_to_expand")),
		Suggestions:        stringList(gjson.Get(doc, "suggestions")),
	}, nil
}

func stringList(r gjson.Result) []string {
	out := []string{}
	r.ForEach(func(_, v gjson.Result) bool {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}
