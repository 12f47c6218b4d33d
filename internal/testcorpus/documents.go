// Package testcorpus writes synthetic source exports in the layout the
// harvesting layer produces, for tests and local end-to-end runs.
package testcorpus

// User is an id+username pair as it appears in most exports.
type User struct {
	ID          string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

// SeedFollowings is a {seed}_seed_followings.json export.
type SeedFollowings struct {
	SeedUsers  []User `json:"seed_users"`
	MasterList []User `json:"master_list"`
}

// ExtendedUser lists who one user follows by id.
type ExtendedUser struct {
	User
	FollowingIDs []string `json:"following_ids"`
}

// ExtendedFollowings is a {seed}_seed_extended_followings.json export.
type ExtendedFollowings struct {
	Users []ExtendedUser `json:"users"`
}

// Post is one timeline entry.
type Post struct {
	PostID          string `json:"post_id"`
	Text            string `json:"text,omitempty"`
	IsReply         bool   `json:"is_reply,omitempty"`
	IsRetweet       bool   `json:"is_retweet,omitempty"`
	IsQuote         bool   `json:"is_quote,omitempty"`
	ReplyToUserID   string `json:"reply_to_user_id,omitempty"`
	ReplyToUsername string `json:"reply_to_username,omitempty"`
	CreatorUserID   string `json:"original_post_creator_user_id,omitempty"`
	CreatorUsername string `json:"original_post_creator_username,omitempty"`
	CommunityID     string `json:"community_id,omitempty"`
}

// TimelineUser is one user's posts and replies.
type TimelineUser struct {
	User
	Posts   []Post `json:"posts"`
	Replies []Post `json:"replies,omitempty"`
}

// SeedInteractions is a {seed}_seed_interactions.json export.
type SeedInteractions struct {
	Users []TimelineUser `json:"users"`
}

// MembersInteractions is a {cid}_members_interactions.json export.
type MembersInteractions struct {
	MembersInteractions []TimelineUser `json:"members_interactions"`
}

// NetworkUser lists who one community member follows, by id or username.
type NetworkUser struct {
	User
	Following []string `json:"following"`
}

// FollowingNetwork is a {cid}_following_network.json export.
type FollowingNetwork struct {
	FollowingNetwork []NetworkUser `json:"following_network"`
}

// Comment answers a community post.
type Comment struct {
	CommentID         string `json:"comment_id"`
	CommenterUserID   string `json:"commenter_user_id"`
	CommenterUsername string `json:"commenter_username,omitempty"`
	OriginalPostID    string `json:"original_post_id,omitempty"`
	AuthorUserID      string `json:"original_post_author_id"`
	AuthorUsername    string `json:"original_post_author_username,omitempty"`
}

// CommentGraph is a {cid}_comment_graph.json export.
type CommentGraph struct {
	CommentGraph []Comment `json:"comment_graph"`
}

// Interaction is one username-keyed row.
type Interaction struct {
	Type       string `json:"type"`
	OriginUser string `json:"origin_user"`
	TargetUser string `json:"target_user"`
	PostID     string `json:"post_id"`
}

// InternalInteractions is a {cid}_internal_interactions.json export.
type InternalInteractions struct {
	Interactions []Interaction `json:"interactions"`
}

// Roster is a {cid}_members.json export.
type Roster struct {
	Members    []User `json:"members"`
	Moderators []User `json:"moderators"`
}
