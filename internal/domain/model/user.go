package model

// User is a member of the interaction universe. Either field may be empty
// when only one half of the identity was ever observed.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// TrustEdge is the aggregate weight of all counted events from Source to Target.
type TrustEdge struct {
	Source string
	Target string
	Weight float64
}

// SeedEntry is one row of the seed vector.
type SeedEntry struct {
	ID     string
	Weight float64
}

// ScoreEntry is one row of a score table, raw or normalized.
type ScoreEntry struct {
	ID    string
	Score float64
}
