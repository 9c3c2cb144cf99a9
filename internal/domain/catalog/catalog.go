// Package catalog holds the coffee catalog row and result shapes shared
// between the store, the resolver, and the transport.
package catalog

import "time"

// RoasterRef is the owning-roaster back-reference carried on product rows.
type RoasterRef struct {
	ID   string
	Name string
}

// Roaster is a full roaster record.
type Roaster struct {
	ID          string
	Name        string
	Location    string
	Description string
	WebsiteURL  string
	Verified    bool
	CreatedAt   time.Time
}

// ProductRow is the raw product row returned by the catalog store. Similarity
// and Distance are populated only by similarity queries; fallback inventory
// queries leave them zero.
type ProductRow struct {
	ID          string
	Name        string
	RoastLevel  string
	Process     string
	Description string
	Price       *float64
	ImageURL    string
	ProductURL  string
	FlavorTags  []string
	Available   bool
	Featured    bool
	Roaster     *RoasterRef
	Similarity  float64
	Distance    float64
	CreatedAt   time.Time
}

// Match is a single ranked similarity hit in its public shape.
type Match struct {
	ID           string
	Name         string
	RoastLevel   string
	Process      string
	Description  string
	Price        *float64
	ImageURL     string
	ProductURL   string
	FlavorTags   []string
	Available    bool
	Featured     bool
	Roaster      *RoasterRef
	Similarity   float64
	Distance     float64
	MatchingTags []string
}

// Level identifies which resolution step satisfied a query.
type Level string

const (
	// LevelCache means the result was replayed from the result cache.
	LevelCache Level = "cache"
	// LevelPrimary means the primary threshold search produced rows.
	LevelPrimary Level = "primary"
	// LevelRelaxed means the lowered-threshold retry produced rows.
	LevelRelaxed Level = "relaxed"
	// LevelMinimal means the near-zero-threshold retry produced rows.
	LevelMinimal Level = "minimal"
	// LevelGuaranteed means thresholding was abandoned and inventory was
	// fetched by the featured/recency heuristic.
	LevelGuaranteed Level = "guaranteed"
	// LevelEmpty means even the guaranteed fetch found nothing: the store
	// is empty.
	LevelEmpty Level = "empty"
)

// ResultSet is a ranked, offset-applied similarity result.
type ResultSet struct {
	Tags            []string
	Matches         []Match
	Total           int
	FallbackSourced bool
	Level           Level
}
