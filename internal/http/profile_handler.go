package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"twin-profile/internal/analysis"
	"twin-profile/internal/domain"
)

// ProfileAnalyzer es lo que el handler necesita del servicio de perfiles.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, subjectID string, data domain.PlatformData) (domain.PersonalityProfile, error)
	Latest(ctx context.Context, subjectID string) (domain.PersonalityProfile, error)
}

// ProfileHandler mantiene dependencias para los endpoints de perfil.
type ProfileHandler struct {
	logger   *zap.Logger
	profiles ProfileAnalyzer
}

// NewProfileHandler crea una instancia de ProfileHandler.
func NewProfileHandler(logger *zap.Logger, profiles ProfileAnalyzer) *ProfileHandler {
	return &ProfileHandler{
		logger:   logger,
		profiles: profiles,
	}
}

// RunAnalysis maneja POST /analysis: corre el motor sobre los feature maps
// ya extraidos y devuelve el perfil completo mas la vista de dashboard.
func (h *ProfileHandler) RunAnalysis(c *gin.Context) {
	var req struct {
		SubjectID    string              `json:"subject_id" binding:"required"`
		PlatformData domain.PlatformData `json:"platform_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analysis request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.profiles.Analyze(c.Request.Context(), req.SubjectID, req.PlatformData)
	if err != nil {
		if errors.Is(err, analysis.ErrNoPlatformData) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error":   "connect at least one platform to generate a profile",
			})
			return
		}
		h.logger.Error("analysis failed", zap.Error(err), zap.String("subject_id", req.SubjectID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not run analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"profile":   profile,
		"dashboard": analysis.FormatForDashboard(profile),
	})
}

// GetProfile maneja GET /profile y devuelve el ultimo perfil del sujeto.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	subjectID := c.Query("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id is required"})
		return
	}

	profile, err := h.profiles.Latest(c.Request.Context(), subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err), zap.String("subject_id", subjectID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":   profile,
		"dashboard": analysis.FormatForDashboard(profile),
	})
}
