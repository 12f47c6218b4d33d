// Package identity resolves usernames to stable numeric user ids.
//
// Candidate pairs are collected into a Builder from every source document
// and frozen into a read-only Resolver before any event is normalized.
package identity

import (
	"strings"
)

// Tier ranks how trustworthy a source of id+username pairs is. Lower wins.
type Tier int

// Source tiers, in fallback order.
const (
	// TierDirectory covers follow-network, master-list and membership exports.
	TierDirectory Tier = iota + 1
	// TierInteractions covers per-user post and reply collections.
	TierInteractions
	// TierExtended covers extended-following records.
	TierExtended
)

// NormalizeUsername lower-cases a username and strips surrounding space and a leading @.
func NormalizeUsername(s string) string {
	return strings.TrimLeft(strings.ToLower(strings.TrimSpace(s)), "@")
}

// NormalizeID trims an id. Ids are opaque strings from here on.
func NormalizeID(s string) string {
	return strings.TrimSpace(s)
}

type candidate struct {
	value string
	tier  Tier
}

// Builder accumulates id+username pairs. It is not safe for concurrent use.
type Builder struct {
	byName map[string]candidate
	byID   map[string]candidate
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		byName: make(map[string]candidate),
		byID:   make(map[string]candidate),
	}
}

// Add offers a pair observed at tier. Pairs with an empty half are ignored.
// A mapping from a better tier replaces one from a worse tier; within a tier
// the first pair offered wins. Returns true when the pair was kept.
func (b *Builder) Add(tier Tier, id, username string) bool {
	id = NormalizeID(id)
	username = NormalizeUsername(username)
	if id == "" || username == "" {
		return false
	}
	kept := false
	if cur, ok := b.byName[username]; !ok || tier < cur.tier {
		b.byName[username] = candidate{value: id, tier: tier}
		kept = true
	}
	if cur, ok := b.byID[id]; !ok || tier < cur.tier {
		b.byID[id] = candidate{value: username, tier: tier}
	}
	return kept
}

// Build freezes the collected pairs into a Resolver. The Builder may keep
// being used afterwards without affecting the result.
func (b *Builder) Build() *Resolver {
	r := &Resolver{
		ids:       make(map[string]string, len(b.byName)),
		usernames: make(map[string]string, len(b.byID)),
	}
	for name, c := range b.byName {
		r.ids[name] = c.value
	}
	for id, c := range b.byID {
		r.usernames[id] = c.value
	}
	return r
}

// Resolver is an immutable username<->id table. A nil Resolver resolves nothing.
type Resolver struct {
	ids       map[string]string
	usernames map[string]string
}

// ID returns the user id for username, normalizing the lookup key.
func (r *Resolver) ID(username string) (string, bool) {
	if r == nil {
		return "", false
	}
	id, ok := r.ids[NormalizeUsername(username)]
	return id, ok
}

// Username returns the display username recorded for id.
func (r *Resolver) Username(id string) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.usernames[NormalizeID(id)]
	return name, ok
}

// Len returns the number of resolvable usernames.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// Resolve returns id when present, else the id mapped to username, else "".
func (r *Resolver) Resolve(id, username string) string {
	if id = NormalizeID(id); id != "" {
		return id
	}
	if username == "" {
		return ""
	}
	resolved, _ := r.ID(username)
	return resolved
}
