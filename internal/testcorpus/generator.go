package testcorpus

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strconv"

	"github.com/okian/trustgraph/internal/adapters/source"
	"github.com/okian/trustgraph/pkg/logger"
)

// Defaults for Generate.
const (
	DefaultSeeds        = 3
	DefaultUsers        = 40
	DefaultPostsPerUser = 4
	DefaultMasters      = 10
	DefaultRandSeed     = 42

	firstUserID  = 1_000_000
	firstPostID  = 5_000_000_000
	communityID  = "1900000000000000001"
	mentionShare = 3 // one post in mentionShare carries a mention
)

// Config sizes a generated corpus.
type Config struct {
	Graph        string
	Seeds        int
	Users        int
	PostsPerUser int
	Masters      int
	// RandSeed makes the corpus reproducible.
	RandSeed uint64
}

func (c *Config) withDefaults() {
	if c.Graph == "" {
		c.Graph = "synthetic"
	}
	if c.Seeds <= 0 {
		c.Seeds = DefaultSeeds
	}
	if c.Users <= 0 {
		c.Users = DefaultUsers
	}
	if c.Users < c.Seeds+2 {
		c.Users = c.Seeds + 2
	}
	if c.PostsPerUser <= 0 {
		c.PostsPerUser = DefaultPostsPerUser
	}
	if c.Masters <= 0 {
		c.Masters = DefaultMasters
	}
	c.Masters = min(c.Masters, c.Users)
	if c.RandSeed == 0 {
		c.RandSeed = DefaultRandSeed
	}
}

// Generated describes a written corpus.
type Generated struct {
	Graph       string
	SeedIDs     []string
	CommunityID string
	Users       []User
	// SeedDir and RawDir hold the seed and community exports.
	SeedDir string
	RawDir  string
	Files   []string
}

// Generate writes a reproducible corpus under dir: seed exports for
// cfg.Seeds seed users under dir/raw/seed and one community under dir/raw.
// Post ids are shared between exports so that the same post shows up in
// several files, as it does in real harvests.
func Generate(ctx context.Context, dir string, cfg Config) (Generated, error) {
	cfg.withDefaults()
	rng := rand.New(rand.NewPCG(cfg.RandSeed, cfg.RandSeed^0x9e3779b97f4a7c15))
	log := logger.Get().Named("testcorpus")

	g := Generated{
		Graph:       cfg.Graph,
		CommunityID: communityID,
		SeedDir:     filepath.Join(dir, "raw", "seed"),
		RawDir:      filepath.Join(dir, "raw"),
	}
	g.Users = make([]User, cfg.Users)
	for i := range g.Users {
		id := strconv.Itoa(firstUserID + i)
		g.Users[i] = User{ID: id, Username: fmt.Sprintf("user%04d", i), DisplayName: fmt.Sprintf("User %d", i)}
	}
	for i := range cfg.Seeds {
		g.SeedIDs = append(g.SeedIDs, g.Users[i].ID)
	}
	masters := g.Users[:cfg.Masters]
	timelines := timelinesFor(rng, g.Users, cfg.PostsPerUser)

	write := func(dir, prefix string, kind source.Kind, doc any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := Write(dir, prefix, kind, doc)
		if err != nil {
			return err
		}
		g.Files = append(g.Files, path)
		return nil
	}

	for i, sid := range g.SeedIDs {
		seedUser := g.Users[i]
		if err := write(g.SeedDir, sid, source.SeedFollowings, SeedFollowings{
			SeedUsers:  []User{seedUser},
			MasterList: masters,
		}); err != nil {
			return Generated{}, err
		}

		ext := ExtendedFollowings{}
		for _, u := range pick(rng, g.Users, cfg.Users/2) {
			eu := ExtendedUser{User: u}
			for _, f := range pick(rng, g.Users, 3) {
				eu.FollowingIDs = append(eu.FollowingIDs, f.ID)
			}
			ext.Users = append(ext.Users, eu)
		}
		if err := write(g.SeedDir, sid, source.ExtendedFollowings, ext); err != nil {
			return Generated{}, err
		}

		inter := SeedInteractions{}
		for _, idx := range rng.Perm(len(timelines))[:len(timelines)/2+1] {
			inter.Users = append(inter.Users, timelines[idx])
		}
		if err := write(g.SeedDir, sid, source.SeedInteractions, inter); err != nil {
			return Generated{}, err
		}
	}
	lo, hi := firstUserID, firstUserID+cfg.Users-1
	path, err := WriteRange(g.SeedDir, cfg.Graph, uint64(lo), uint64(hi))
	if err != nil {
		return Generated{}, err
	}
	g.Files = append(g.Files, path)

	if err := g.writeCommunity(rng, write, timelines); err != nil {
		return Generated{}, err
	}

	log.Info(ctx, "synthetic corpus written",
		logger.String("dir", dir),
		logger.Int("users", len(g.Users)),
		logger.Int("seeds", len(g.SeedIDs)),
		logger.Int("files", len(g.Files)),
	)
	return g, nil
}

func (g *Generated) writeCommunity(rng *rand.Rand, write func(string, string, source.Kind, any) error, timelines []TimelineUser) error {
	cid := g.CommunityID
	members := g.Users[len(g.Users)/2:]
	mods := g.Users[:2]

	if err := write(g.RawDir, cid, source.Members, Roster{Members: members, Moderators: mods}); err != nil {
		return err
	}

	net := FollowingNetwork{}
	for _, u := range members {
		nu := NetworkUser{User: u}
		for j, f := range pick(rng, g.Users, 3) {
			// newer exports list usernames, older ones ids
			if j%2 == 0 {
				nu.Following = append(nu.Following, f.ID)
			} else {
				nu.Following = append(nu.Following, f.Username)
			}
		}
		net.FollowingNetwork = append(net.FollowingNetwork, nu)
	}
	if err := write(g.RawDir, cid, source.FollowingNetwork, net); err != nil {
		return err
	}

	mi := MembersInteractions{}
	for _, tl := range timelines[len(timelines)/2:] {
		tl.Posts = append([]Post(nil), tl.Posts...)
		for i := range tl.Posts {
			if rng.IntN(2) == 0 {
				tl.Posts[i].CommunityID = cid
			}
		}
		mi.MembersInteractions = append(mi.MembersInteractions, tl)
	}
	if err := write(g.RawDir, cid, source.MembersInteractions, mi); err != nil {
		return err
	}

	cg := CommentGraph{}
	for i := range len(members) {
		commenter, author := members[rng.IntN(len(members))], members[rng.IntN(len(members))]
		cg.CommentGraph = append(cg.CommentGraph, Comment{
			CommentID:         strconv.Itoa(firstPostID*2 + i),
			CommenterUserID:   commenter.ID,
			CommenterUsername: commenter.Username,
			AuthorUserID:      author.ID,
			AuthorUsername:    author.Username,
		})
	}
	if err := write(g.RawDir, cid, source.CommentGraph, cg); err != nil {
		return err
	}

	ii := InternalInteractions{}
	types := []string{"mention", "reply", "retweet", "quote"}
	for i := range len(members) {
		origin, target := members[rng.IntN(len(members))], members[rng.IntN(len(members))]
		ii.Interactions = append(ii.Interactions, Interaction{
			Type:       types[rng.IntN(len(types))],
			OriginUser: origin.Username,
			TargetUser: target.Username,
			PostID:     strconv.Itoa(firstPostID*3 + i),
		})
	}
	return write(g.RawDir, cid, source.InternalInteractions, ii)
}

// timelinesFor gives every user postsPerUser posts of random kinds.
func timelinesFor(rng *rand.Rand, users []User, postsPerUser int) []TimelineUser {
	out := make([]TimelineUser, len(users))
	next := firstPostID
	for i, u := range users {
		tl := TimelineUser{User: u}
		for range postsPerUser {
			next++
			other := users[rng.IntN(len(users))]
			p := Post{PostID: strconv.Itoa(next), Text: "gm"}
			switch rng.IntN(4) {
			case 0:
				p.IsRetweet = true
				p.CreatorUserID = other.ID
			case 1:
				p.IsQuote = true
				p.CreatorUsername = other.Username
			case 2:
				p.IsReply = true
				p.ReplyToUserID = other.ID
			}
			if rng.IntN(mentionShare) == 0 {
				p.Text += " @" + users[rng.IntN(len(users))].Username
			}
			tl.Posts = append(tl.Posts, p)
		}
		out[i] = tl
	}
	return out
}

// pick returns n distinct users in random order.
func pick(rng *rand.Rand, users []User, n int) []User {
	n = min(n, len(users))
	out := make([]User, 0, n)
	for _, idx := range rng.Perm(len(users))[:n] {
		out = append(out, users[idx])
	}
	return out
}
