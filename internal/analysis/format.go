package analysis

import (
	"fmt"
	"time"

	"twin-profile/internal/domain"
)

const (
	maxDashboardEvidence  = 3
	maxDashboardCitations = 10
	maxTopEvidence        = 10
)

// DashboardEvidence es una evidencia lista para mostrarse: frase legible
// mas cita corta.
type DashboardEvidence struct {
	Text       string            `json:"text"`
	Citation   string            `json:"citation"`
	EffectSize domain.EffectSize `json:"effect_size"`
	Domain     string            `json:"domain,omitempty"`
}

// DashboardDimension resume una dimension para la UI.
type DashboardDimension struct {
	Score        int                 `json:"score"`
	Confidence   float64             `json:"confidence"`
	Evidence     []DashboardEvidence `json:"evidence"`
	ConflictNote string              `json:"conflict_note,omitempty"`
}

// DashboardProfile es la vista recortada que consume la capa de UI/API.
type DashboardProfile struct {
	SubjectID   string                                  `json:"subject_id"`
	Dimensions  map[domain.Dimension]DashboardDimension `json:"dimensions"`
	Citations   []string                                `json:"citations"`
	TopEvidence []DashboardEvidence                     `json:"top_evidence"`
	Methodology domain.Methodology                      `json:"methodology"`
	GeneratedAt time.Time                               `json:"generated_at"`
}

// FormatForDashboard recorta el perfil completo a lo que muestra la UI:
// top-3 evidencias por dimension, maximo 10 citas globales y una lista
// global de hasta 10 evidencias ordenadas por tamano de efecto.
func FormatForDashboard(p domain.PersonalityProfile) DashboardProfile {
	dims := make(map[domain.Dimension]DashboardDimension, len(p.Dimensions))
	var all []domain.EvidenceItem

	for dim, score := range p.Dimensions {
		items := score.Evidence
		all = append(all, items...)
		if len(items) > maxDashboardEvidence {
			items = items[:maxDashboardEvidence]
		}
		dims[dim] = DashboardDimension{
			Score:        score.Score,
			Confidence:   score.Confidence,
			Evidence:     toDashboardEvidence(items),
			ConflictNote: score.ConflictNote,
		}
	}

	citations := p.Citations
	if len(citations) > maxDashboardCitations {
		citations = citations[:maxDashboardCitations]
	}

	sortEvidence(all)
	if len(all) > maxTopEvidence {
		all = all[:maxTopEvidence]
	}

	return DashboardProfile{
		SubjectID:   p.SubjectID,
		Dimensions:  dims,
		Citations:   citations,
		TopEvidence: toDashboardEvidence(all),
		Methodology: p.Methodology,
		GeneratedAt: p.CreatedAt,
	}
}

func toDashboardEvidence(items []domain.EvidenceItem) []DashboardEvidence {
	out := make([]DashboardEvidence, 0, len(items))
	for _, item := range items {
		out = append(out, DashboardEvidence{
			Text:       item.HumanReadable,
			Citation:   shortCitation(item.Citation),
			EffectSize: item.EffectSize,
			Domain:     item.Domain,
		})
	}
	return out
}

// shortCitation comprime la cita a "fuente, r=X" para tooltips y listas.
func shortCitation(c domain.Citation) string {
	return fmt.Sprintf("%s, r=%s", c.Source, formatFloat(c.R))
}
