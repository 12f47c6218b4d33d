package source

import (
	"iter"

	"github.com/okian/trustgraph/internal/domain/identity"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/pkg/metrics"
)

// post is a timeline entry as exported by the harvesting layer.
type post struct {
	PostID          flexID `json:"post_id"`
	Text            string `json:"text"`
	IsReply         truthy `json:"is_reply"`
	IsRetweet       truthy `json:"is_retweet"`
	IsQuote         truthy `json:"is_quote"`
	ReplyToUserID   flexID `json:"reply_to_user_id"`
	ReplyToUsername string `json:"reply_to_username"`
	// Older exports use the first key, newer ones the second.
	CreatorID       flexID `json:"original_post_creator_id"`
	CreatorUserID   flexID `json:"original_post_creator_user_id"`
	CreatorUsername string `json:"original_post_creator_username"`
	CommunityID     flexID `json:"community_id"`
}

func (p *post) creatorID() string {
	if id := p.CreatorUserID.String(); id != "" {
		return id
	}
	return p.CreatorID.String()
}

type interactionUser struct {
	UserID   flexID     `json:"user_id"`
	Username string     `json:"username"`
	Posts    list[post] `json:"posts"`
	Replies  list[post] `json:"replies"`
}

// timelineRecords normalizes per-user post and reply collections. A post
// yields at most one of retweet, quote or reply, in that priority, plus one
// mention per @handle in its text. Entries in the replies list are always
// replies.
func timelineRecords(kind Kind, users []interactionUser, scope Scope) iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		r := scope.Resolver
		for _, u := range users {
			author := r.Resolve(u.UserID.String(), u.Username)
			if author == "" {
				metrics.RecordEventDropped(DropMissingField)
				continue
			}
			for i := range u.Posts {
				p := &u.Posts[i]
				if p.PostID == "" {
					metrics.RecordEventDropped(DropMissingField)
					continue
				}
				metrics.RecordRecordNormalized(string(kind))
				b := newRecordBuilder(author, inCommunity(scope, p))
				switch {
				case bool(p.IsRetweet):
					b.add(model.Retweet, r.Resolve(p.creatorID(), p.CreatorUsername))
				case bool(p.IsQuote):
					b.add(model.Quote, r.Resolve(p.creatorID(), p.CreatorUsername))
				case bool(p.IsReply):
					b.add(model.Reply, r.Resolve(p.ReplyToUserID.String(), p.ReplyToUsername))
				}
				addMentions(b, r, p.Text)
				if !yield(b.record(model.PostID(p.PostID.String()))) {
					return
				}
			}
			for i := range u.Replies {
				p := &u.Replies[i]
				if p.PostID == "" {
					metrics.RecordEventDropped(DropMissingField)
					continue
				}
				metrics.RecordRecordNormalized(string(kind))
				b := newRecordBuilder(author, inCommunity(scope, p))
				b.add(model.Reply, r.Resolve(p.ReplyToUserID.String(), p.ReplyToUsername))
				addMentions(b, r, p.Text)
				if !yield(b.record(model.PostID(p.PostID.String()))) {
					return
				}
			}
		}
	}
}

func addMentions(b *recordBuilder, r *identity.Resolver, text string) {
	for _, handle := range Mentions(text) {
		id, _ := r.ID(handle)
		b.add(model.Mention, id)
	}
}

func inCommunity(scope Scope, p *post) bool {
	return scope.CommunityID != "" && p.CommunityID.String() == scope.CommunityID
}

// seedInteractionsDoc holds the timelines of seed users and their network.
type seedInteractionsDoc struct {
	Users list[interactionUser] `json:"users"`
}

func (d *seedInteractionsDoc) Kind() Kind { return SeedInteractions }

func (d *seedInteractionsDoc) Identities(add IdentityFunc) {
	for _, u := range d.Users {
		add(identity.TierInteractions, u.UserID.String(), u.Username)
	}
}

func (d *seedInteractionsDoc) Records(scope Scope) iter.Seq[model.Record] {
	// seed graphs have no community context
	scope.CommunityID = ""
	return timelineRecords(SeedInteractions, d.Users, scope)
}

// membersInteractionsDoc holds the timelines of community members.
type membersInteractionsDoc struct {
	MembersInteractions list[interactionUser] `json:"members_interactions"`
}

func (d *membersInteractionsDoc) Kind() Kind { return MembersInteractions }

func (d *membersInteractionsDoc) Identities(add IdentityFunc) {
	for _, u := range d.MembersInteractions {
		add(identity.TierInteractions, u.UserID.String(), u.Username)
	}
}

func (d *membersInteractionsDoc) Records(scope Scope) iter.Seq[model.Record] {
	return timelineRecords(MembersInteractions, d.MembersInteractions, scope)
}
