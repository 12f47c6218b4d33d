package aggregate

import (
	"maps"

	"github.com/okian/trustgraph/internal/domain/model"
)

// Stats counts what happened to records and events during aggregation.
type Stats struct {
	Records    map[model.KeyKind]int
	Duplicates map[model.KeyKind]int
	Events     map[model.InteractionType]int
	Dropped    map[string]int
}

func newStats() Stats {
	return Stats{
		Records:    make(map[model.KeyKind]int),
		Duplicates: make(map[model.KeyKind]int),
		Events:     make(map[model.InteractionType]int),
		Dropped:    make(map[string]int),
	}
}

func (s Stats) clone() Stats {
	return Stats{
		Records:    maps.Clone(s.Records),
		Duplicates: maps.Clone(s.Duplicates),
		Events:     maps.Clone(s.Events),
		Dropped:    maps.Clone(s.Dropped),
	}
}

// Summary describes the weight distribution of an edge list.
type Summary struct {
	Edges int
	Min   float64
	Max   float64
	Mean  float64
	Total float64
}

// Summarize computes a Summary. An empty list yields the zero Summary.
func Summarize(edges []model.TrustEdge) Summary {
	if len(edges) == 0 {
		return Summary{}
	}
	s := Summary{Edges: len(edges), Min: edges[0].Weight, Max: edges[0].Weight}
	for _, e := range edges {
		s.Total += e.Weight
		s.Min = min(s.Min, e.Weight)
		s.Max = max(s.Max, e.Weight)
	}
	s.Mean = s.Total / float64(len(edges))
	return s
}
