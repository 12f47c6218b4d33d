package source

import (
	"iter"

	"github.com/okian/trustgraph/internal/domain/identity"
	"github.com/okian/trustgraph/internal/domain/model"
)

type member struct {
	ID       flexID `json:"id"`
	UserID   flexID `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (m member) id() string {
	if m.UserID != "" {
		return m.UserID.String()
	}
	return m.ID.String()
}

// membersDoc is a community roster.
type membersDoc struct {
	Members    list[member] `json:"members"`
	Moderators list[member] `json:"moderators"`
}

func (d *membersDoc) Kind() Kind { return Members }

func (d *membersDoc) Identities(add IdentityFunc) {
	for _, m := range d.Members {
		add(identity.TierDirectory, m.id(), m.Username)
	}
	for _, m := range d.Moderators {
		add(identity.TierDirectory, m.id(), m.Username)
	}
}

// Records is empty: a roster carries no interactions.
func (d *membersDoc) Records(Scope) iter.Seq[model.Record] {
	return func(func(model.Record) bool) {}
}

// Usernames returns the normalized usernames of members and moderators.
func (d *membersDoc) Usernames() map[string]struct{} {
	out := make(map[string]struct{}, len(d.Members)+len(d.Moderators))
	for _, group := range [][]member{d.Members, d.Moderators} {
		for _, m := range group {
			if name := identity.NormalizeUsername(m.Username); name != "" {
				out[name] = struct{}{}
			}
		}
	}
	return out
}
