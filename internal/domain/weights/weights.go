// Package weights holds the per-interaction trust weights applied during aggregation.
package weights

import (
	"github.com/okian/trustgraph/internal/domain/model"
)

// Default weights per interaction type.
const (
	DefaultFollow  = 30
	DefaultMention = 30
	DefaultReply   = 20
	DefaultRetweet = 50
	DefaultQuote   = 40

	// DefaultCommunityMultiplier leaves community content unboosted.
	DefaultCommunityMultiplier = 1.0
)

// Defaults returns a fresh copy of the default weight table by type name.
func Defaults() map[string]int {
	return map[string]int{
		string(model.Follow):  DefaultFollow,
		string(model.Mention): DefaultMention,
		string(model.Reply):   DefaultReply,
		string(model.Retweet): DefaultRetweet,
		string(model.Quote):   DefaultQuote,
	}
}

// Option applies a configuration option to the Table.
type Option func(*Table)

// WithWeightsFromConfig overrides weights by type name. Unknown names and
// non-positive values are ignored so absent types keep their defaults.
func WithWeightsFromConfig(cfg map[string]int) Option {
	return func(t *Table) {
		for name, w := range cfg {
			it, err := model.ParseInteractionType(name)
			if err != nil || w <= 0 {
				continue
			}
			t.weights[it] = float64(w)
		}
	}
}

// WithCommunityMultiplier scales events flagged as in-community. Values <= 0 are ignored.
func WithCommunityMultiplier(m float64) Option {
	return func(t *Table) {
		if m > 0 {
			t.communityMultiplier = m
		}
	}
}

// Table maps interaction types to weights. It is read-only after New.
type Table struct {
	weights             map[model.InteractionType]float64
	communityMultiplier float64
}

// New builds a Table from the defaults plus opts.
func New(opts ...Option) *Table {
	t := &Table{
		weights:             make(map[model.InteractionType]float64, len(model.InteractionTypes)),
		communityMultiplier: DefaultCommunityMultiplier,
	}
	for name, w := range Defaults() {
		t.weights[model.InteractionType(name)] = float64(w)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Base returns the configured weight of it, or zero for an unknown type.
func (t *Table) Base(it model.InteractionType) float64 {
	return t.weights[it]
}

// CommunityMultiplier returns the factor applied to in-community events.
func (t *Table) CommunityMultiplier() float64 {
	return t.communityMultiplier
}

// Weight returns the contribution of e to its edge.
func (t *Table) Weight(e model.Event) float64 {
	w := t.weights[e.Type]
	if e.InCommunity {
		w *= t.communityMultiplier
	}
	return w
}
