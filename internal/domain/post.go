package domain

import (
	"time"

	"github.com/lib/pq"
)

// Post is a job listing published by a contractor. The embedding is computed
// best-effort at creation time; posts with an empty embedding are excluded
// from similarity-based queries.
type Post struct {
	ID           string          `db:"post_id" json:"post_id"`
	Title        string          `db:"title" json:"title"`
	Content      string          `db:"content" json:"content"`
	Location     string          `db:"location" json:"location"`
	Salary       float64         `db:"salary" json:"salary"`
	Requirements string          `db:"requirements" json:"requirements"`
	PublisherID  string          `db:"publisher_id" json:"publisher_id"`
	Embedding    pq.Float64Array `db:"embedding" json:"-"`
	AcceptedBy   pq.StringArray  `db:"accepted_by" json:"accepted_by"`
	StartDate    time.Time       `db:"start_date" json:"start_date"`
	EndDate      time.Time       `db:"end_date" json:"end_date"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// HasEmbedding reports whether the post carries a usable embedding vector.
func (p *Post) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// SearchText concatenates the free-text fields used for trade-keyword
// matching.
func (p *Post) SearchText() string {
	return p.Title + " " + p.Content + " " + p.Requirements + " " + p.Location
}
