package source

import (
	"iter"

	"github.com/okian/trustgraph/internal/domain/identity"
	"github.com/okian/trustgraph/internal/domain/model"
	"github.com/okian/trustgraph/pkg/metrics"
)

type userRef struct {
	UserID      flexID `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// seedFollowingsDoc: every seed user follows every master list user.
type seedFollowingsDoc struct {
	SeedUsers  list[userRef] `json:"seed_users"`
	MasterList list[userRef] `json:"master_list"`
}

func (d *seedFollowingsDoc) Kind() Kind { return SeedFollowings }

func (d *seedFollowingsDoc) Identities(add IdentityFunc) {
	for _, u := range d.MasterList {
		add(identity.TierDirectory, u.UserID.String(), u.Username)
	}
	for _, u := range d.SeedUsers {
		add(identity.TierDirectory, u.UserID.String(), u.Username)
	}
}

// MasterIDs returns the ids of the master list, nil when the export has none.
func (d *seedFollowingsDoc) MasterIDs() map[string]struct{} {
	if d.MasterList == nil {
		return nil
	}
	out := make(map[string]struct{}, len(d.MasterList))
	for _, u := range d.MasterList {
		if id := identity.NormalizeID(u.UserID.String()); id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func (d *seedFollowingsDoc) Records(scope Scope) iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		for _, s := range d.SeedUsers {
			src := scope.Resolver.Resolve(s.UserID.String(), s.Username)
			if src == "" {
				metrics.RecordEventDropped(DropMissingField)
				continue
			}
			metrics.RecordRecordNormalized(string(SeedFollowings))
			for _, m := range d.MasterList {
				rec, ok := followRecord(src, scope.Resolver.Resolve(m.UserID.String(), m.Username))
				if ok && !yield(rec) {
					return
				}
			}
		}
	}
}

// extendedFollowingsDoc lists who each user follows by id.
type extendedFollowingsDoc struct {
	Users list[struct {
		UserID       flexID       `json:"user_id"`
		Username     string       `json:"username"`
		FollowingIDs list[flexID] `json:"following_ids"`
	}] `json:"users"`
}

func (d *extendedFollowingsDoc) Kind() Kind { return ExtendedFollowings }

func (d *extendedFollowingsDoc) Identities(add IdentityFunc) {
	for _, u := range d.Users {
		add(identity.TierExtended, u.UserID.String(), u.Username)
	}
}

func (d *extendedFollowingsDoc) Records(scope Scope) iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		for _, u := range d.Users {
			src := scope.Resolver.Resolve(u.UserID.String(), u.Username)
			if src == "" {
				metrics.RecordEventDropped(DropMissingField)
				continue
			}
			metrics.RecordRecordNormalized(string(ExtendedFollowings))
			for _, raw := range u.FollowingIDs {
				tgt := identity.NormalizeID(raw.String())
				if scope.MasterIDs != nil && tgt != "" {
					if _, ok := scope.MasterIDs[tgt]; !ok {
						metrics.RecordEventDropped(DropOffMaster)
						continue
					}
				}
				rec, ok := followRecord(src, tgt)
				if ok && !yield(rec) {
					return
				}
			}
		}
	}
}

// followingNetworkDoc lists who each community member follows. Entries are
// ids or usernames depending on the export version.
type followingNetworkDoc struct {
	FollowingNetwork list[struct {
		UserID    flexID       `json:"user_id"`
		Username  string       `json:"username"`
		Following list[flexID] `json:"following"`
	}] `json:"following_network"`
}

func (d *followingNetworkDoc) Kind() Kind { return FollowingNetwork }

func (d *followingNetworkDoc) Identities(add IdentityFunc) {
	for _, u := range d.FollowingNetwork {
		add(identity.TierDirectory, u.UserID.String(), u.Username)
	}
}

func (d *followingNetworkDoc) Records(scope Scope) iter.Seq[model.Record] {
	return func(yield func(model.Record) bool) {
		for _, u := range d.FollowingNetwork {
			src := scope.Resolver.Resolve(u.UserID.String(), u.Username)
			if src == "" {
				metrics.RecordEventDropped(DropMissingField)
				continue
			}
			metrics.RecordRecordNormalized(string(FollowingNetwork))
			for _, raw := range u.Following {
				rec, ok := followRecord(src, resolveRef(scope.Resolver, raw.String()))
				if ok && !yield(rec) {
					return
				}
			}
		}
	}
}

// resolveRef treats a numeric reference as an id and anything else as a username.
func resolveRef(r *identity.Resolver, ref string) string {
	ref = identity.NormalizeID(ref)
	if isNumeric(ref) {
		return ref
	}
	return r.Resolve("", ref)
}
