package beans

import "time"

// RoasterRef is the owning-roaster reference carried on products.
type RoasterRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Roaster is a coffee roaster record.
type Roaster struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	WebsiteURL  string    `json:"website_url,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a coffee product record.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	RoastLevel  string      `json:"roast_level,omitempty"`
	Process     string      `json:"process,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	ProductURL  string      `json:"product_url,omitempty"`
	FlavorTags  []string    `json:"flavor_tags"`
	Available   bool        `json:"available"`
	Featured    bool        `json:"featured"`
	Roaster     *RoasterRef `json:"roaster,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Match is a single ranked similarity hit.
type Match struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	RoastLevel   string      `json:"roast_level,omitempty"`
	Process      string      `json:"process,omitempty"`
	Description  string      `json:"description,omitempty"`
	Price        *float64    `json:"price,omitempty"`
	ImageURL     string      `json:"image_url,omitempty"`
	ProductURL   string      `json:"product_url,omitempty"`
	FlavorTags   []string    `json:"flavor_tags"`
	Available    bool        `json:"available"`
	Featured     bool        `json:"featured"`
	Roaster      *RoasterRef `json:"roaster,omitempty"`
	Similarity   float64     `json:"similarity"`
	Distance     float64     `json:"distance"`
	MatchingTags []string    `json:"matching_tags"`
}

// ResultSet is a ranked similarity result. Level reports which resolution
// step satisfied the query: cache, primary, relaxed, minimal, guaranteed,
// or empty.
type ResultSet struct {
	Tags            []string `json:"flavor_tags"`
	Matches         []Match  `json:"matches"`
	Total           int      `json:"total"`
	FallbackSourced bool     `json:"fallback_sourced"`
	Level           string   `json:"level"`
}

// SimilarityQuery describes a flavor-similarity search.
type SimilarityQuery struct {
	FlavorTags  []string `json:"flavor_tags"`
	MaxResults  int      `json:"max_results,omitempty"`
	Offset      int      `json:"offset,omitempty"`
	Threshold   float64  `json:"threshold,omitempty"`
	BypassCache bool     `json:"bypass_cache,omitempty"`
}

// RoasterQuery filters a roaster search.
type RoasterQuery struct {
	Query    string `json:"query,omitempty"`
	Location string `json:"location,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// ProductQuery filters a product search.
type ProductQuery struct {
	Query      string `json:"query,omitempty"`
	RoasterID  string `json:"roaster_id,omitempty"`
	RoastLevel string `json:"roast_level,omitempty"`
	Process    string `json:"process,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// RoasterDetails is a roaster with its product listing.
type RoasterDetails struct {
	Roaster  Roaster   `json:"roaster"`
	Products []Product `json:"products"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
