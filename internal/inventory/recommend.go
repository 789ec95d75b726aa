package inventory

import (
	"context"
	"sort"
)

// Recommendation ranks a component by how many of the requested tags it carries.
type Recommendation struct {
	ComponentID string `json:"componentId"`
	Name        string `json:"name"`
	MatchScore  int    `json:"matchScore"`
}

// Recommend returns components matching any of the given tags, best match
// first. An empty tag set yields an empty result.
func (s *Service) Recommend(ctx context.Context, tags []string) ([]Recommendation, error) {
	if len(tags) == 0 {
		return []Recommendation{}, nil
	}
	wanted := map[string]bool{}
	for _, t := range tags {
		if t != "" {
			wanted[t] = true
		}
	}

	comps, err := s.store.ListComponents(ctx, ComponentFilter{})
	if err != nil {
		return nil, err
	}

	recs := []Recommendation{}
	for _, c := range comps {
		score := 0
		for _, t := range c.Tags {
			if wanted[t] {
				score++
			}
		}
		if score > 0 {
			recs = append(recs, Recommendation{ComponentID: c.ComponentID, Name: c.Name, MatchScore: score})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].MatchScore > recs[j].MatchScore })
	return recs, nil
}
