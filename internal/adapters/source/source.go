// Package source decodes the per-source interaction exports written by the
// harvesting layer and normalizes them into canonical interaction records.
//
// Every export shape is a Document. Decoding is strict about JSON syntax but
// lenient about content. A list element whose fields have the wrong JSON
// type is dropped on decode, and records that lack a mandatory field are
// skipped while iterating. Neither is reported as an error.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/okian/trustgraph/internal/domain/identity"
	"github.com/okian/trustgraph/internal/domain/model"
)

// Sentinel errors for this package.
var (
	ErrUnknownKind = errors.New("unknown source kind")
	ErrDecode      = errors.New("decode source document")
)

// Kind names one export shape.
type Kind string

// Source kinds.
const (
	SeedFollowings       Kind = "seed_followings"
	ExtendedFollowings   Kind = "seed_extended_followings"
	SeedInteractions     Kind = "seed_interactions"
	MembersInteractions  Kind = "members_interactions"
	FollowingNetwork     Kind = "following_network"
	CommentGraph         Kind = "comment_graph"
	InternalInteractions Kind = "internal_interactions"
	Members              Kind = "members"
)

// Scope carries the run-wide state a Document needs to emit records.
type Scope struct {
	// Resolver maps usernames to ids. It must be fully built beforehand.
	Resolver *identity.Resolver
	// CommunityID is the community being built, empty for seed graphs.
	CommunityID string
	// MasterIDs restricts extended followings to these targets when non-nil.
	MasterIDs map[string]struct{}
}

// IdentityFunc receives one id+username pair observed at tier.
type IdentityFunc func(tier identity.Tier, id, username string)

// Document is one decoded export.
type Document interface {
	Kind() Kind
	// Identities reports every id+username pair the document carries.
	Identities(add IdentityFunc)
	// Records lazily yields canonical records. Records missing a mandatory
	// field are skipped.
	Records(scope Scope) iter.Seq[model.Record]
}

// MasterLister is implemented by documents that may define a master list.
// MasterIDs is nil when the document has none and empty, but non-nil, when
// the list is present with no usable id.
type MasterLister interface {
	MasterIDs() map[string]struct{}
}

// UsernameLister is implemented by documents that enumerate a membership.
type UsernameLister interface {
	Usernames() map[string]struct{}
}

// Decode parses r as a document of kind.
func Decode(kind Kind, r io.Reader) (Document, error) {
	var doc Document
	switch kind {
	case SeedFollowings:
		doc = &seedFollowingsDoc{}
	case ExtendedFollowings:
		doc = &extendedFollowingsDoc{}
	case SeedInteractions:
		doc = &seedInteractionsDoc{}
	case MembersInteractions:
		doc = &membersInteractionsDoc{}
	case FollowingNetwork:
		doc = &followingNetworkDoc{}
	case CommentGraph:
		doc = &commentGraphDoc{}
	case InternalInteractions:
		doc = &internalInteractionsDoc{}
	case Members:
		doc = &membersDoc{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, kind, err)
	}
	return doc, nil
}
