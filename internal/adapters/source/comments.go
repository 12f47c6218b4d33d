package source

import (
	"iter"

	"github.com/okian/trustgraph/internal/domain/identity"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/pkg/metrics"
)

// commentGraphDoc links community comments to the author of the post they answer.
type commentGraphDoc struct {
	CommentGraph list[struct {
		CommentID         flexID `json:"comment_id"`
		CommenterUserID   flexID `json:"commenter_user_id"`
		CommenterUsername string `json:"commenter_username"`
		OriginalPostID    flexID `json:"original_post_id"`
		AuthorUserID      flexID `json:"original_post_author_id"`
		AuthorUsername    string `json:"original_post_author_username"`
	}] `json:"comment_graph"`
}

func (d *commentGraphDoc) Kind() Kind { return CommentGraph }

func (d *commentGraphDoc) Identities(add IdentityFunc) {
	for _, c := range d.CommentGraph {
		add(identity.TierInteractions, c.CommenterUserID.String(), c.CommenterUsername)
		add(identity.TierInteractions, c.AuthorUserID.String(), c.AuthorUsername)
	}
}

// Records yields one reply per comment. Comments are community content by
// definition.
func (d *commentGraphDoc) Records(scope Scope) iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		r := scope.Resolver
		for _, c := range d.CommentGraph {
			commenter := r.Resolve(c.CommenterUserID.String(), c.CommenterUsername)
			if c.CommentID == "" || commenter == "" {
				metrics.RecordEventDropped(DropMissingField)
				continue
			}
			metrics.RecordRecordNormalized(string(CommentGraph))
			b := newRecordBuilder(commenter, true)
			b.add(model.Reply, r.Resolve(c.AuthorUserID.String(), c.AuthorUsername))
			if !yield(b.record(model.PostID(c.CommentID.String()))) {
				return
			}
		}
	}
}
