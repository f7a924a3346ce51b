package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradematch/tradematch-be/internal/domain"
)

func TestDeriveMatchedFields(t *testing.T) {
	post := &domain.Post{
		Title:        "Bathroom renovation",
		Requirements: "tiling, plumbing\nwaterproofing, drywall",
		Location:     "Rotterdam",
	}

	tests := []struct {
		name     string
		profile  *domain.ContractorProfile
		expected []string
	}{
		{
			name: "trade plus matched skills and services",
			profile: &domain.ContractorProfile{
				PrimaryTrade: "plumber",
				Skills:       []string{"Tiling", "Plumbing", "Painting"},
				Services:     []string{"Waterproofing"},
			},
			expected: []string{
				"primaryTrade:plumber",
				"skills:Tiling,Plumbing",
				"services:Waterproofing",
			},
		},
		{
			name: "no trade and no overlapping entries",
			profile: &domain.ContractorProfile{
				Skills:   []string{"Roofing"},
				Services: []string{"Scaffolding"},
			},
			expected: []string{},
		},
		{
			name: "coverage area tokens count as requirement matches",
			profile: &domain.ContractorProfile{
				CoverageAreas: []string{"drywall"},
			},
			expected: []string{"coverageAreas:drywall"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveMatchedFields(tt.profile, post))
		})
	}
}

func TestDeriveMatchedFields_CapsValues(t *testing.T) {
	post := &domain.Post{
		Requirements: "a, b, c, d, e, f, g",
	}
	profile := &domain.ContractorProfile{
		Skills: []string{"a", "b", "c", "d", "e", "f", "g"},
	}

	tags := DeriveMatchedFields(profile, post)
	assert.Equal(t, []string{"skills:a,b,c,d,e"}, tags)
}

func TestCoverageAreaMatch(t *testing.T) {
	tests := []struct {
		name     string
		areas    []string
		location string
		expected bool
	}{
		{"exact match", []string{"Amsterdam"}, "Amsterdam", true},
		{"area contained in location", []string{"dam"}, "Amsterdam", true},
		{"location contained in area", []string{"Greater Amsterdam"}, "Amsterdam", true},
		{"case insensitive", []string{"AMSTERDAM"}, "amsterdam", true},
		{"no overlap", []string{"Utrecht"}, "Amsterdam", false},
		{"empty location", []string{"Utrecht"}, "", false},
		{"empty areas", nil, "Amsterdam", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CoverageAreaMatch(tt.areas, tt.location))
		})
	}
}

func TestTradeKeywordMatch(t *testing.T) {
	post := &domain.Post{
		Title:        "Need an Electrician",
		Content:      "Full rewiring of a townhouse",
		Requirements: "certified",
		Location:     "Utrecht",
	}

	assert.True(t, TradeKeywordMatch("electrician", post))
	assert.True(t, TradeKeywordMatch("ELECTRICIAN", post))
	assert.True(t, TradeKeywordMatch("utrecht", post))
	assert.False(t, TradeKeywordMatch("plumber", post))
	assert.False(t, TradeKeywordMatch("", post))
}
