package analysis

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"twin-profile/internal/domain"
	"twin-profile/internal/knowledge"
)

// Params agrupa las constantes del motor de inferencia. Los defaults
// replican el comportamiento del sistema original tal cual; son contrato,
// no una derivacion estadistica.
type Params struct {
	// MinAbsCorrelation filtra efectos triviales: por debajo de este |r|
	// un hallazgo nunca se presenta, ni siquiera como evidencia debil.
	MinAbsCorrelation float64
	// AdjustmentScale acota el empuje maximo de una sola evidencia sobre
	// la escala 0-100 a aproximadamente ±AdjustmentScale.
	AdjustmentScale float64
	// ConflictPenalty se resta de la confianza de una dimension cuando
	// sus evidencias apuntan en direcciones opuestas.
	ConflictPenalty float64
}

// DefaultParams devuelve las constantes originales del motor.
func DefaultParams() Params {
	return Params{
		MinAbsCorrelation: 0.15,
		AdjustmentScale:   30,
		ConflictPenalty:   0.1,
	}
}

// DomainAnalyzer convierte el feature map normalizado de un dominio en
// inferencias por dimension consultando la base de correlaciones. Es un
// unico tipo generico parametrizado por el identificador del dominio; las
// diferencias entre dominios viven en el dataset, no en subtipos.
type DomainAnalyzer struct {
	domainName  string
	kb          *knowledge.Base
	params      Params
	limitations []string
	logger      *zap.Logger
}

// NewDomainAnalyzer crea un analizador para un dominio conductual.
func NewDomainAnalyzer(domainName string, kb *knowledge.Base, params Params, logger *zap.Logger) *DomainAnalyzer {
	return &DomainAnalyzer{
		domainName:  domainName,
		kb:          kb,
		params:      params,
		limitations: limitationsFor(domainName),
		logger:      logger,
	}
}

// Domain devuelve el identificador del dominio analizado.
func (a *DomainAnalyzer) Domain() string { return a.domainName }

// Analyze produce un DomainResult a partir del feature map del dominio.
// Nunca lanza panico por datos ausentes o malformados: solo devuelve
// Success=false cuando el dominio no trae ningun feature utilizable.
func (a *DomainAnalyzer) Analyze(subjectID string, features domain.FeatureMap) domain.DomainResult {
	if features.Empty() {
		return domain.DomainResult{
			Domain:  a.domainName,
			Success: false,
			Error:   "no usable feature map for domain",
		}
	}

	// Orden deterministico: el mismo input produce el mismo resultado.
	names := make([]string, 0, len(features.Features))
	for name := range features.Features {
		names = append(names, name)
	}
	sort.Strings(names)

	inferences := make(map[domain.Dimension]domain.DimensionInference)
	var citations []string
	seenCitations := make(map[string]struct{})

	for _, feature := range names {
		value := features.Features[feature]
		for _, dim := range domain.AllDimensions {
			rec, ok := a.kb.Lookup(feature, dim)
			if !ok {
				// Sin respaldo empirico no hay afirmacion.
				continue
			}
			if math.Abs(rec.R) < a.params.MinAbsCorrelation {
				continue
			}

			item := a.buildEvidence(feature, dim, value, features.RawValues, rec)
			agg := inferences[dim]
			agg.ScoreAdjustment += item.ScoreAdjustment
			agg.AllEvidence = append(agg.AllEvidence, item)
			agg.EvidenceCount = len(agg.AllEvidence)
			if agg.StrongestEvidence == nil || math.Abs(item.Citation.R) > math.Abs(agg.StrongestEvidence.Citation.R) {
				strongest := item
				agg.StrongestEvidence = &strongest
			}
			inferences[dim] = agg

			cit := item.Citation.FullCitation
			if cit == "" {
				cit = item.Citation.Source
			}
			if _, dup := seenCitations[cit]; !dup && cit != "" {
				seenCitations[cit] = struct{}{}
				citations = append(citations, cit)
			}
		}
	}

	// La confianza del dominio por dimension es el promedio de sus evidencias.
	for dim, agg := range inferences {
		var sum float64
		for _, item := range agg.AllEvidence {
			sum += item.Confidence
		}
		agg.Confidence = sum / float64(len(agg.AllEvidence))
		inferences[dim] = agg
	}

	a.logger.Debug("domain analyzed",
		zap.String("subject_id", subjectID),
		zap.String("domain", a.domainName),
		zap.Int("features", len(names)),
		zap.Int("dimensions", len(inferences)))

	return domain.DomainResult{
		Domain:      a.domainName,
		Success:     true,
		Inferences:  inferences,
		Citations:   citations,
		Limitations: a.limitations,
	}
}

func (a *DomainAnalyzer) buildEvidence(feature string, dim domain.Dimension, value float64, rawValues map[string]any, rec domain.CorrelationRecord) domain.EvidenceItem {
	isHigh := value >= rec.Threshold

	// Una correlacion negativa con un valor bajo sigue prediciendo direccion
	// positiva del rasgo; la tabla de verdad se reduce a esta igualdad.
	direction := domain.DirectionNegative
	if (rec.R > 0) == isHigh {
		direction = domain.DirectionPositive
	}

	// Distancia al punto medio no informativo, en la direccion informativa.
	deviation := value
	if !isHigh {
		deviation = 1 - value
	}
	magnitude := int(math.Round(deviation * math.Abs(rec.R) * a.params.AdjustmentScale))
	adjustment := magnitude
	if direction == domain.DirectionNegative {
		adjustment = -magnitude
	}

	human := a.renderEvidenceText(feature, dim, value, rawValues, rec, isHigh)

	return domain.EvidenceItem{
		Feature:         feature,
		Dimension:       dim,
		Domain:          a.domainName,
		Value:           value,
		Direction:       direction,
		EffectSize:      rec.EffectSize,
		ScoreAdjustment: adjustment,
		Confidence:      evidenceConfidence(rec.EffectSize, rec.SampleSize),
		Citation:        a.kb.Citation(rec),
		HumanReadable:   human,
	}
}

func (a *DomainAnalyzer) renderEvidenceText(feature string, dim domain.Dimension, value float64, rawValues map[string]any, rec domain.CorrelationRecord, isHigh bool) string {
	tpl, ok := a.kb.Template(feature, dim, isHigh)
	if !ok {
		return fallbackSentence(feature, dim, rec.R)
	}
	text, err := RenderTemplate(tpl, templateVars(value, rawValues))
	if err != nil {
		a.logger.Warn("evidence template failed, using fallback",
			zap.String("feature", feature), zap.String("dimension", string(dim)), zap.Error(err))
		return fallbackSentence(feature, dim, rec.R)
	}
	return text
}
