package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"twin-profile/internal/analysis"
	"twin-profile/internal/domain"
	"twin-profile/internal/repository"
)

// ProfileService corre el motor de inferencia y mantiene el perfil
// persistido y cacheado para la capa de lectura.
type ProfileService struct {
	orchestrator *analysis.Orchestrator
	profileRepo  repository.ProfileRepository
	cache        ProfileCache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewProfileService(
	orchestrator *analysis.Orchestrator,
	profileRepo repository.ProfileRepository,
	cache ProfileCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		orchestrator: orchestrator,
		profileRepo:  profileRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Analyze ejecuta el pipeline completo y deja el resultado disponible para
// lecturas posteriores. Fallos de persistencia o cache se registran pero no
// descartan el perfil ya calculado: resultado parcial antes que fallo total.
func (s *ProfileService) Analyze(ctx context.Context, subjectID string, data domain.PlatformData) (domain.PersonalityProfile, error) {
	profile, err := s.orchestrator.Run(ctx, subjectID, data)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}

	if s.profileRepo != nil {
		if err := s.profileRepo.Save(ctx, profile); err != nil {
			s.logger.Warn("profile persist failed", zap.Error(err), zap.String("subject_id", subjectID))
		}
	}
	if s.cache != nil {
		if err := s.cache.Store(subjectID, profile, s.cacheTTL); err != nil {
			s.logger.Warn("profile cache store failed", zap.Error(err), zap.String("subject_id", subjectID))
		}
	}

	return profile, nil
}

// Latest devuelve el perfil mas reciente del sujeto, cache primero.
func (s *ProfileService) Latest(ctx context.Context, subjectID string) (domain.PersonalityProfile, error) {
	if s.cache != nil {
		profile, ok, err := s.cache.Get(subjectID)
		if err != nil {
			s.logger.Warn("profile cache read failed", zap.Error(err), zap.String("subject_id", subjectID))
		} else if ok {
			return profile, nil
		}
	}

	if s.profileRepo == nil {
		return domain.PersonalityProfile{}, fmt.Errorf("no profile store configured")
	}

	profile, err := s.profileRepo.GetLatest(ctx, subjectID)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}

	if s.cache != nil {
		if err := s.cache.Store(subjectID, profile, s.cacheTTL); err != nil {
			s.logger.Warn("profile cache backfill failed", zap.Error(err), zap.String("subject_id", subjectID))
		}
	}
	return profile, nil
}
