package source

import (
	"regexp"
	"strings"

	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/pkg/metrics"
)

// Drop reasons reported by the normalizer.
const (
	DropMissingField = "missing_field"
	DropUnresolved   = "unresolved"
	DropSelfLoop     = "self_loop"
	DropOffMaster    = "outside_master_list"
)

// mentionPattern matches @handles using word characters in any script.
var mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)

// Mentions returns the lower-cased handles mentioned in text, in order and
// with repeats.
func Mentions(text string) []string {
	if !strings.Contains(text, "@") {
		return nil
	}
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m[1]))
	}
	return out
}

// recordBuilder collects the events of one record from a single source user.
type recordBuilder struct {
	source      string
	inCommunity bool
	events      []model.Event
}

func newRecordBuilder(source string, inCommunity bool) *recordBuilder {
	return &recordBuilder{source: source, inCommunity: inCommunity}
}

// add appends an event toward target, dropping unresolved targets and self-loops.
func (b *recordBuilder) add(t model.InteractionType, target string) {
	switch {
	case target == "":
		metrics.RecordEventDropped(DropUnresolved)
		return
	case target == b.source:
		metrics.RecordEventDropped(DropSelfLoop)
		return
	}
	b.events = append(b.events, model.Event{
		Type:        t,
		Source:      b.source,
		Target:      target,
		InCommunity: b.inCommunity,
	})
	metrics.RecordEventEmitted(string(t))
}

func (b *recordBuilder) record(key model.DedupKey) model.Record {
	return model.Record{Key: key, Events: b.events}
}

// followRecord builds the record of a single follow edge. ok is false when
// the edge must not be counted at all.
func followRecord(source, target string) (model.Record, bool) {
	if source == "" || target == "" {
		metrics.RecordEventDropped(DropUnresolved)
		return model.Record{}, false
	}
	if source == target {
		metrics.RecordEventDropped(DropSelfLoop)
		return model.Record{}, false
	}
	metrics.RecordEventEmitted(string(model.Follow))
	return model.Record{
		Key:    model.FollowPair(source, target),
		Events: []model.Event{{Type: model.Follow, Source: source, Target: target}},
	}, true
}
