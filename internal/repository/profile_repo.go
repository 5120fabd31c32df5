package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"twin-profile/internal/domain"
)

type ProfileRepository interface {
	Save(ctx context.Context, profile domain.PersonalityProfile) error
	GetLatest(ctx context.Context, subjectID string) (domain.PersonalityProfile, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// Save persiste el perfil completo como documento jsonb. Cada analisis
// genera una fila nueva; el historial queda disponible para la UI.
func (r *PgProfileRepository) Save(ctx context.Context, profile domain.PersonalityProfile) error {
	const query = `
		INSERT INTO personality_profiles (id, subject_id, profile, created_at)
		VALUES ($1, $2, $3, $4)
	`

	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		profile.ID,
		profile.SubjectID,
		doc,
		profile.CreatedAt,
	)
	return err
}

// GetLatest devuelve el perfil mas reciente del sujeto.
// Propaga pgx.ErrNoRows cuando no hay perfil guardado.
func (r *PgProfileRepository) GetLatest(ctx context.Context, subjectID string) (domain.PersonalityProfile, error) {
	const query = `
		SELECT profile
		FROM personality_profiles
		WHERE subject_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var doc []byte
	if err := r.pool.QueryRow(ctx, query, subjectID).Scan(&doc); err != nil {
		return domain.PersonalityProfile{}, err
	}

	var profile domain.PersonalityProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return domain.PersonalityProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return profile, nil
}
