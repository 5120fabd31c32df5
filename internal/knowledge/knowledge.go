package knowledge

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"twin-profile/internal/domain"
)

// Base es el repositorio de correlaciones feature→dimension. Se carga una
// sola vez al arrancar y despues es de solo lectura, asi que puede
// compartirse entre analizadores concurrentes sin locking.
type Base struct {
	version string
	records map[string]map[domain.Dimension]domain.CorrelationRecord
	sources map[string]domain.SourceInfo
}

type datasetFile struct {
	Version      string                       `json:"version"`
	Sources      map[string]domain.SourceInfo `json:"sources"`
	Correlations []datasetRecord              `json:"correlations"`
}

type datasetRecord struct {
	Feature   string                   `json:"feature"`
	Dimension string                   `json:"dimension"`
	R         float64                  `json:"r"`
	Source    string                   `json:"source"`
	Threshold *float64                 `json:"threshold,omitempty"`
	Templates domain.EvidenceTemplates `json:"templates"`
}

// DefaultThreshold separa "alto" de "bajo" cuando el dataset no lo define.
const DefaultThreshold = 0.5

// Empty devuelve una base sin registros. Todos los lookups fallan y los
// analizadores degradan a "sin evidencia".
func Empty() *Base {
	return &Base{
		records: make(map[string]map[domain.Dimension]domain.CorrelationRecord),
		sources: make(map[string]domain.SourceInfo),
	}
}

// NewStatic construye una base en memoria a partir de registros ya armados.
// Deriva el effect size y aplica el threshold default cuando faltan.
func NewStatic(records []domain.CorrelationRecord, sources map[string]domain.SourceInfo) *Base {
	base := Empty()
	if sources != nil {
		base.sources = sources
	}
	for _, rec := range records {
		if rec.EffectSize == "" {
			rec.EffectSize = domain.ClassifyEffectSize(rec.R)
		}
		if rec.Threshold == 0 {
			rec.Threshold = DefaultThreshold
		}
		if rec.SampleSize == nil {
			if src, ok := base.sources[rec.Source]; ok {
				rec.SampleSize = src.SampleSize
			}
		}
		if base.records[rec.Feature] == nil {
			base.records[rec.Feature] = make(map[domain.Dimension]domain.CorrelationRecord)
		}
		base.records[rec.Feature][rec.Dimension] = rec
	}
	return base
}

// Load lee el dataset versionado desde disco usando DefaultThreshold.
func Load(path string, logger *zap.Logger) *Base {
	return LoadWithThreshold(path, DefaultThreshold, logger)
}

// LoadWithThreshold lee el dataset versionado desde disco. Un archivo ausente
// o malformado no es fatal: se registra el problema y se devuelve una base
// vacia para que el resto del sistema siga operando.
func LoadWithThreshold(path string, threshold float64, logger *zap.Logger) *Base {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("correlation dataset not readable, knowledge base empty",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}

	var file datasetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		logger.Warn("correlation dataset malformed, knowledge base empty",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}

	base := Empty()
	base.version = file.Version
	if file.Sources != nil {
		base.sources = file.Sources
	}

	for _, rec := range file.Correlations {
		dim, ok := domain.ParseDimension(rec.Dimension)
		if !ok || rec.Feature == "" {
			logger.Warn("skipping invalid correlation record",
				zap.String("feature", rec.Feature), zap.String("dimension", rec.Dimension))
			continue
		}

		recThreshold := threshold
		if rec.Threshold != nil {
			recThreshold = *rec.Threshold
		}

		var sampleSize *int
		if src, ok := base.sources[rec.Source]; ok {
			sampleSize = src.SampleSize
		}

		if base.records[rec.Feature] == nil {
			base.records[rec.Feature] = make(map[domain.Dimension]domain.CorrelationRecord)
		}
		base.records[rec.Feature][dim] = domain.CorrelationRecord{
			Feature:    rec.Feature,
			Dimension:  dim,
			R:          rec.R,
			EffectSize: domain.ClassifyEffectSize(rec.R),
			Source:     rec.Source,
			SampleSize: sampleSize,
			Threshold:  recThreshold,
			Templates:  rec.Templates,
		}
	}

	logger.Info("correlation dataset loaded",
		zap.String("version", base.version),
		zap.Int("records", base.Len()),
		zap.Int("sources", len(base.sources)))
	return base
}

// Lookup devuelve el registro para un par feature/dimension si existe.
func (b *Base) Lookup(feature string, dim domain.Dimension) (domain.CorrelationRecord, bool) {
	byDim, ok := b.records[feature]
	if !ok {
		return domain.CorrelationRecord{}, false
	}
	rec, ok := byDim[dim]
	return rec, ok
}

// Template devuelve la frase de evidencia para el nivel indicado.
func (b *Base) Template(feature string, dim domain.Dimension, high bool) (string, bool) {
	rec, ok := b.Lookup(feature, dim)
	if !ok {
		return "", false
	}
	tpl := rec.Templates.Low
	if high {
		tpl = rec.Templates.High
	}
	if tpl == "" {
		return "", false
	}
	return tpl, true
}

// Source devuelve la entrada del registro de citas.
func (b *Base) Source(id string) (domain.SourceInfo, bool) {
	src, ok := b.sources[id]
	return src, ok
}

// Citation arma la cita completa que acompana una evidencia.
func (b *Base) Citation(rec domain.CorrelationRecord) domain.Citation {
	cit := domain.Citation{
		Source:     rec.Source,
		R:          rec.R,
		EffectSize: rec.EffectSize,
		SampleSize: rec.SampleSize,
	}
	if src, ok := b.sources[rec.Source]; ok {
		cit.FullCitation = src.Citation
	}
	return cit
}

// Len cuenta los registros cargados.
func (b *Base) Len() int {
	n := 0
	for _, byDim := range b.records {
		n += len(byDim)
	}
	return n
}

// Version reporta la version del dataset cargado, vacia si no hay dataset.
func (b *Base) Version() string { return b.version }
