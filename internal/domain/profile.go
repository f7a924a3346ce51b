package domain

import (
	"time"

	"github.com/lib/pq"
)

// ContractorProfile holds the subcontractor-facing profile data consumed by
// matching and recommendation. The profile embedding is required for the
// open-for-work pool and refreshed best-effort on profile updates.
type ContractorProfile struct {
	UserID           string          `db:"user_id" json:"user_id"`
	PrimaryTrade     string          `db:"primary_trade" json:"primary_trade"`
	Skills           pq.StringArray  `db:"skills" json:"skills"`
	Services         pq.StringArray  `db:"services" json:"services"`
	CoverageAreas    pq.StringArray  `db:"coverage_areas" json:"coverage_areas"`
	ProfileEmbedding pq.Float64Array `db:"profile_embedding" json:"-"`
	OpenForWork      bool            `db:"open_for_work" json:"open_for_work"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// HasEmbedding reports whether the profile carries a usable embedding vector.
func (p *ContractorProfile) HasEmbedding() bool {
	return len(p.ProfileEmbedding) > 0
}
