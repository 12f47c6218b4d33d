package source

import (
	"iter"

	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/pkg/metrics"
)

// internalInteractionsDoc is a flat, username-keyed interaction export in
// which one post may contribute several rows.
type internalInteractionsDoc struct {
	Interactions list[struct {
		Type       string `json:"type"`
		OriginUser string `json:"origin_user"`
		TargetUser string `json:"target_user"`
		PostID     flexID `json:"post_id"`
	}] `json:"interactions"`
}

func (d *internalInteractionsDoc) Kind() Kind { return InternalInteractions }

// Identities is empty: the export carries usernames only.
func (d *internalInteractionsDoc) Identities(IdentityFunc) {}

// Records groups rows by post id, in first-seen order, so that every row of
// one post shares a single dedup key.
func (d *internalInteractionsDoc) Records(scope Scope) iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		r := scope.Resolver
		order := make([]string, 0)
		byPost := make(map[string]*recordBuilder)
		for _, row := range d.Interactions {
			t, err := model.ParseInteractionType(row.Type)
			if err != nil || row.PostID == "" {
				metrics.RecordEventDropped(DropMissingField)
				continue
			}
			origin := r.Resolve("", row.OriginUser)
			if origin == "" {
				metrics.RecordEventDropped(DropUnresolved)
				continue
			}
			id := row.PostID.String()
			b, ok := byPost[id]
			if !ok {
				b = newRecordBuilder(origin, false)
				byPost[id] = b
				order = append(order, id)
				metrics.RecordRecordNormalized(string(InternalInteractions))
			}
			if b.source != origin {
				// a post has exactly one author
				metrics.RecordEventDropped(DropMissingField)
				continue
			}
			b.add(t, r.Resolve("", row.TargetUser))
		}
		for _, id := range order {
			if !yield(byPost[id].record(model.PostID(id))) {
				return
			}
		}
	}
}
