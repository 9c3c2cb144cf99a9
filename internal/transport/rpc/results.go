package rpc

import (
	"time"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
	roasteruc "github.com/alr-main/better-beans-server/internal/usecase/roaster"
)

type roasterRefJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// The list shapes below never drop keys. Absent optional fields serialize
// as explicit nulls or empty strings so callers see a stable shape.
type roasterJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	WebsiteURL  string    `json:"website_url"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

type productJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	RoastLevel  string          `json:"roast_level"`
	Process     string          `json:"process"`
	Description string          `json:"description"`
	Price       *float64        `json:"price"`
	ImageURL    string          `json:"image_url"`
	ProductURL  string          `json:"product_url"`
	FlavorTags  []string        `json:"flavor_tags"`
	Available   bool            `json:"available"`
	Featured    bool            `json:"featured"`
	Roaster     *roasterRefJSON `json:"roaster"`
	CreatedAt   time.Time       `json:"created_at"`
}

type matchJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RoastLevel   string          `json:"roast_level"`
	Process      string          `json:"process"`
	Description  string          `json:"description"`
	Price        *float64        `json:"price"`
	ImageURL     string          `json:"image_url"`
	ProductURL   string          `json:"product_url"`
	FlavorTags   []string        `json:"flavor_tags"`
	Available    bool            `json:"available"`
	Featured     bool            `json:"featured"`
	Roaster      *roasterRefJSON `json:"roaster"`
	Similarity   float64         `json:"similarity"`
	Distance     float64         `json:"distance"`
	MatchingTags []string        `json:"matching_tags"`
}

type resultSetJSON struct {
	Tags            []string    `json:"flavor_tags"`
	Matches         []matchJSON `json:"matches"`
	Total           int         `json:"total"`
	FallbackSourced bool        `json:"fallback_sourced"`
	Level           string      `json:"level"`
}

type roasterListJSON struct {
	Roasters []roasterJSON `json:"roasters"`
	Total    int           `json:"total"`
}

type roasterDetailsJSON struct {
	Roaster  roasterJSON   `json:"roaster"`
	Products []productJSON `json:"products"`
}

type productListJSON struct {
	Products []productJSON `json:"products"`
	Total    int           `json:"total"`
}

func roasterRefToJSON(r *catalog.RoasterRef) *roasterRefJSON {
	if r == nil {
		return nil
	}
	return &roasterRefJSON{ID: r.ID, Name: r.Name}
}

func roasterToJSON(r catalog.Roaster) roasterJSON {
	return roasterJSON{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Description: r.Description,
		WebsiteURL:  r.WebsiteURL,
		Verified:    r.Verified,
		CreatedAt:   r.CreatedAt,
	}
}

func productToJSON(p catalog.ProductRow) productJSON {
	tags := p.FlavorTags
	if tags == nil {
		tags = []string{}
	}
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		RoastLevel:  p.RoastLevel,
		Process:     p.Process,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		ProductURL:  p.ProductURL,
		FlavorTags:  tags,
		Available:   p.Available,
		Featured:    p.Featured,
		Roaster:     roasterRefToJSON(p.Roaster),
		CreatedAt:   p.CreatedAt,
	}
}

func matchToJSON(m catalog.Match) matchJSON {
	tags := m.FlavorTags
	if tags == nil {
		tags = []string{}
	}
	matching := m.MatchingTags
	if matching == nil {
		matching = []string{}
	}
	return matchJSON{
		ID:           m.ID,
		Name:         m.Name,
		RoastLevel:   m.RoastLevel,
		Process:      m.Process,
		Description:  m.Description,
		Price:        m.Price,
		ImageURL:     m.ImageURL,
		ProductURL:   m.ProductURL,
		FlavorTags:   tags,
		Available:    m.Available,
		Featured:     m.Featured,
		Roaster:      roasterRefToJSON(m.Roaster),
		Similarity:   m.Similarity,
		Distance:     m.Distance,
		MatchingTags: matching,
	}
}

func resultSetToJSON(set catalog.ResultSet) resultSetJSON {
	matches := make([]matchJSON, len(set.Matches))
	for i, m := range set.Matches {
		matches[i] = matchToJSON(m)
	}
	return resultSetJSON{
		Tags:            set.Tags,
		Matches:         matches,
		Total:           set.Total,
		FallbackSourced: set.FallbackSourced,
		Level:           string(set.Level),
	}
}

func roasterListToJSON(roasters []catalog.Roaster) roasterListJSON {
	items := make([]roasterJSON, len(roasters))
	for i, r := range roasters {
		items[i] = roasterToJSON(r)
	}
	return roasterListJSON{Roasters: items, Total: len(items)}
}

func roasterDetailsToJSON(d roasteruc.Details) roasterDetailsJSON {
	products := make([]productJSON, len(d.Products))
	for i, p := range d.Products {
		products[i] = productToJSON(p)
	}
	return roasterDetailsJSON{Roaster: roasterToJSON(d.Roaster), Products: products}
}

func productListToJSON(products []catalog.ProductRow) productListJSON {
	items := make([]productJSON, len(products))
	for i, p := range products {
		items[i] = productToJSON(p)
	}
	return productListJSON{Products: items, Total: len(items)}
}
