package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/tradematch/tradematch-be/internal/domain"
)

const profileColumns = `
	user_id, primary_trade, skills, services, coverage_areas,
	profile_embedding, open_for_work, created_at, updated_at
`

// GetProfile retrieves a contractor profile by user ID.
func (s *Storage) GetProfile(ctx context.Context, userID string) (*domain.ContractorProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM contractor_profiles
		WHERE user_id = $1
	`

	var profile domain.ContractorProfile
	if err := s.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpsertProfile inserts or replaces the user's profile fields. The
// open_for_work flag is preserved on update; the embedding is replaced.
func (s *Storage) UpsertProfile(ctx context.Context, profile *domain.ContractorProfile) error {
	query := `
		INSERT INTO contractor_profiles (
			user_id, primary_trade, skills, services, coverage_areas,
			profile_embedding, open_for_work, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, FALSE, NOW(), NOW()
		)
		ON CONFLICT (user_id) DO UPDATE
		SET primary_trade = EXCLUDED.primary_trade,
		    skills = EXCLUDED.skills,
		    services = EXCLUDED.services,
		    coverage_areas = EXCLUDED.coverage_areas,
		    profile_embedding = EXCLUDED.profile_embedding,
		    updated_at = NOW()
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		profile.UserID,
		profile.PrimaryTrade,
		profile.Skills,
		profile.Services,
		profile.CoverageAreas,
		profile.ProfileEmbedding,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// SetOpenForWork toggles the open-for-work flag.
func (s *Storage) SetOpenForWork(ctx context.Context, userID string, open bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE contractor_profiles
		SET open_for_work = $1, updated_at = NOW()
		WHERE user_id = $2
	`, open, userID)
	if err != nil {
		return fmt.Errorf("failed to set open_for_work: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// SetProfileEmbedding replaces the profile embedding vector.
func (s *Storage) SetProfileEmbedding(ctx context.Context, userID string, embedding []float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE contractor_profiles
		SET profile_embedding = $1, updated_at = NOW()
		WHERE user_id = $2
	`, pq.Float64Array(embedding), userID)
	if err != nil {
		return fmt.Errorf("failed to set profile embedding: %w", err)
	}

	return nil
}

// OpenProfilesWithEmbedding lists every open-for-work profile carrying an
// embedding, the candidate pool for profile-for-post ranking.
func (s *Storage) OpenProfilesWithEmbedding(ctx context.Context) ([]domain.ContractorProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM contractor_profiles
		WHERE open_for_work = TRUE AND cardinality(profile_embedding) > 0
	`

	var profiles []domain.ContractorProfile
	if err := s.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list open profiles: %w", err)
	}

	return profiles, nil
}
