package matching

import (
	"strings"

	"github.com/tradematch/tradematch-be/internal/domain"
)

const (
	// maxMatchedFields caps the number of tags recorded on a request
	maxMatchedFields = 6
	// maxValuesPerField caps the number of values listed inside one tag
	maxValuesPerField = 5
)

// DeriveMatchedFields returns an ordered list of short tags describing why a
// profile matched a post: the primary trade first when present, then one tag
// per profile list (skills, services, coverage areas) naming which entries
// appear among the post's requirement tokens.
func DeriveMatchedFields(profile *domain.ContractorProfile, post *domain.Post) []string {
	tags := make([]string, 0, maxMatchedFields)

	if trade := strings.TrimSpace(profile.PrimaryTrade); trade != "" {
		tags = append(tags, "primaryTrade:"+trade)
	}

	tokens := requirementTokens(post.Requirements)
	lists := []struct {
		label  string
		values []string
	}{
		{"skills", profile.Skills},
		{"services", profile.Services},
		{"coverageAreas", profile.CoverageAreas},
	}

	for _, l := range lists {
		if len(tags) >= maxMatchedFields {
			break
		}
		matched := matchedValues(l.values, tokens)
		if len(matched) == 0 {
			continue
		}
		tags = append(tags, l.label+":"+strings.Join(matched, ","))
	}

	if len(tags) > maxMatchedFields {
		tags = tags[:maxMatchedFields]
	}
	return tags
}

// CoverageAreaMatch reports whether any coverage-area string matches the
// post's location by case-insensitive substring in either direction.
func CoverageAreaMatch(areas []string, location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return false
	}
	for _, area := range areas {
		a := strings.ToLower(strings.TrimSpace(area))
		if a == "" {
			continue
		}
		if strings.Contains(loc, a) || strings.Contains(a, loc) {
			return true
		}
	}
	return false
}

// TradeKeywordMatch reports whether the profile's primary trade appears as a
// substring of the post's concatenated free text.
func TradeKeywordMatch(primaryTrade string, post *domain.Post) bool {
	trade := strings.ToLower(strings.TrimSpace(primaryTrade))
	if trade == "" {
		return false
	}
	return strings.Contains(strings.ToLower(post.SearchText()), trade)
}

// requirementTokens splits a requirements string on commas and newlines into
// a lowercased token set.
func requirementTokens(requirements string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(requirements, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// matchedValues returns the profile entries present in the token set,
// preserving profile order and capping the result.
func matchedValues(values []string, tokens map[string]struct{}) []string {
	matched := make([]string, 0, maxValuesPerField)
	for _, v := range values {
		if len(matched) >= maxValuesPerField {
			break
		}
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := tokens[strings.ToLower(trimmed)]; ok {
			matched = append(matched, trimmed)
		}
	}
	return matched
}
