// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownInteraction is returned when an interaction type name is not recognized.
var ErrUnknownInteraction = errors.New("unknown interaction type")

// InteractionType classifies one trust-bearing fact between two users.
type InteractionType string

// Interaction types.
const (
	Follow  InteractionType = "follow"
	Mention InteractionType = "mention"
	Reply   InteractionType = "reply"
	Retweet InteractionType = "retweet"
	Quote   InteractionType = "quote"
)

// InteractionTypes lists every interaction type in a stable order.
var InteractionTypes = []InteractionType{Follow, Mention, Reply, Retweet, Quote}

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case Follow, Mention, Reply, Retweet, Quote:
		return true
	}
	return false
}

func (t InteractionType) String() string { return string(t) }

// ParseInteractionType maps a case-insensitive name to an InteractionType.
func ParseInteractionType(name string) (InteractionType, error) {
	t := InteractionType(strings.ToLower(strings.TrimSpace(name)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownInteraction, name)
	}
	return t, nil
}

// KeyKind selects which seen-set a dedup key belongs to.
type KeyKind string

// Dedup key kinds.
const (
	FollowKey KeyKind = "follow"
	PostKey   KeyKind = "post"
)

// DedupKey identifies the underlying fact a record describes.
type DedupKey struct {
	Kind  KeyKind
	Value string
}

// FollowPair builds the key of a follow edge from its ordered endpoints.
func FollowPair(source, target string) DedupKey {
	return DedupKey{Kind: FollowKey, Value: source + "\x00" + target}
}

// PostID builds the key of any post-derived record.
func PostID(id string) DedupKey {
	return DedupKey{Kind: PostKey, Value: id}
}

func (k DedupKey) String() string {
	return string(k.Kind) + ":" + strings.ReplaceAll(k.Value, "\x00", "->")
}

// Event is one canonical interaction between two resolved users.
type Event struct {
	Type   InteractionType
	Source string
	Target string
	// InCommunity marks events from content posted inside the community being built.
	InCommunity bool
}

// SelfLoop reports whether both endpoints are the same user.
func (e Event) SelfLoop() bool { return e.Source == e.Target }

// Complete reports whether both endpoints are present.
func (e Event) Complete() bool { return e.Source != "" && e.Target != "" }

// Record groups the events contributed by one deduplicated fact: a follow
// pair carries a single event, a post carries its repost/reply event plus mentions.
type Record struct {
	Key    DedupKey
	Events []Event
}
