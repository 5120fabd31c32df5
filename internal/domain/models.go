package domain

import (
	"encoding/json"
	"time"
)

// Dimension identifica uno de los cinco rasgos del modelo Big Five.
type Dimension string

const (
	DimensionOpenness          Dimension = "openness"
	DimensionConscientiousness Dimension = "conscientiousness"
	DimensionExtraversion      Dimension = "extraversion"
	DimensionAgreeableness     Dimension = "agreeableness"
	DimensionNeuroticism       Dimension = "neuroticism"
)

// AllDimensions mantiene el orden canonico de presentacion.
var AllDimensions = []Dimension{
	DimensionOpenness,
	DimensionConscientiousness,
	DimensionExtraversion,
	DimensionAgreeableness,
	DimensionNeuroticism,
}

// ParseDimension valida un nombre de dimension recibido desde fuera.
func ParseDimension(s string) (Dimension, bool) {
	for _, d := range AllDimensions {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// EffectSize es el bucket cualitativo derivado de |r|.
type EffectSize string

const (
	EffectTrivial EffectSize = "trivial"
	EffectSmall   EffectSize = "small"
	EffectMedium  EffectSize = "medium"
	EffectLarge   EffectSize = "large"
)

// Direction indica hacia donde empuja una evidencia la dimension.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// EvidenceTemplates contiene las frases para valores altos y bajos del feature.
type EvidenceTemplates struct {
	High string `json:"high"`
	Low  string `json:"low"`
}

// CorrelationRecord es una correlacion feature→dimension con respaldo empirico.
// Solo existe para pares con estudio citable; su ausencia significa "sin
// afirmacion", nunca un cero implicito.
type CorrelationRecord struct {
	Feature    string            `json:"feature"`
	Dimension  Dimension         `json:"dimension"`
	R          float64           `json:"r"`
	EffectSize EffectSize        `json:"effect_size"`
	Source     string            `json:"source"`
	SampleSize *int              `json:"sample_size,omitempty"`
	Threshold  float64           `json:"threshold"`
	Templates  EvidenceTemplates `json:"templates"`
}

// SourceInfo es una entrada del registro de citas del dataset.
type SourceInfo struct {
	Citation   string `json:"citation"`
	SampleSize *int   `json:"sample_size,omitempty"`
}

// Citation acompana cada evidencia con el estudio que la respalda.
type Citation struct {
	Source       string     `json:"source"`
	R            float64    `json:"r"`
	EffectSize   EffectSize `json:"effect_size"`
	SampleSize   *int       `json:"sample_size,omitempty"`
	FullCitation string     `json:"full_citation,omitempty"`
}

// EvidenceItem es una inferencia individual: un feature observado ajustando
// una dimension. Inmutable una vez producido por el analizador.
type EvidenceItem struct {
	Feature         string     `json:"feature"`
	Dimension       Dimension  `json:"dimension"`
	Domain          string     `json:"domain,omitempty"`
	Value           float64    `json:"value"`
	Direction       Direction  `json:"direction"`
	EffectSize      EffectSize `json:"effect_size"`
	ScoreAdjustment int        `json:"score_adjustment"`
	Confidence      float64    `json:"confidence"`
	Citation        Citation   `json:"citation"`
	HumanReadable   string     `json:"human_readable"`
}

// DimensionInference agrega la evidencia de un dominio para una dimension.
// Si el dominio no produjo inferencias para una dimension, la clave no existe
// en el mapa: "no tengo nada que decir" es distinto de "digo que es neutral".
type DimensionInference struct {
	ScoreAdjustment   int            `json:"score_adjustment"`
	Confidence        float64        `json:"confidence"`
	EvidenceCount     int            `json:"evidence_count"`
	StrongestEvidence *EvidenceItem  `json:"strongest_evidence,omitempty"`
	AllEvidence       []EvidenceItem `json:"all_evidence"`
}

// DomainResult es la salida de analizar un dominio para una solicitud.
type DomainResult struct {
	Domain      string                           `json:"domain"`
	Success     bool                             `json:"success"`
	Error       string                           `json:"error,omitempty"`
	Inferences  map[Dimension]DimensionInference `json:"inferences,omitempty"`
	Citations   []string                         `json:"citations,omitempty"`
	Limitations []string                         `json:"limitations,omitempty"`
}

// DimensionScore es la entrada final de una dimension en el perfil.
type DimensionScore struct {
	Score           int            `json:"score"`
	Confidence      float64        `json:"confidence"`
	Evidence        []EvidenceItem `json:"evidence"`
	ConflictNote    string         `json:"conflict_note,omitempty"`
	ConflictPenalty float64        `json:"conflict_penalty,omitempty"`
}

// Methodology documenta como se construyo el perfil.
type Methodology struct {
	AgentsUsed        []string           `json:"agents_used"`
	TotalEvidence     int                `json:"total_evidence"`
	EffectSizeSummary map[EffectSize]int `json:"effect_size_summary"`
	Limitations       []string           `json:"limitations"`
}

// PersonalityProfile es el agregado final de una solicitud de analisis.
// Invariantes: score en [0,100], confidence en [0,0.95].
type PersonalityProfile struct {
	ID          string                       `json:"id"`
	SubjectID   string                       `json:"subject_id"`
	Dimensions  map[Dimension]DimensionScore `json:"dimensions"`
	Citations   []string                     `json:"citations"`
	Methodology Methodology                  `json:"methodology"`
	ElapsedMS   int64                        `json:"elapsed_ms"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// FeatureMap es el vector de features normalizados de un dominio mas los
// valores crudos que la capa de extraccion adjunta bajo la clave _rawValues.
type FeatureMap struct {
	Features  map[string]float64
	RawValues map[string]any
}

// Empty indica si el dominio no aporta ningun feature utilizable.
func (m FeatureMap) Empty() bool {
	return len(m.Features) == 0
}

// UnmarshalJSON separa _rawValues del resto de claves numericas.
// Las claves no numericas se descartan en silencio: datos malformados de un
// dominio nunca deben tumbar el analisis completo.
func (m *FeatureMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Features = make(map[string]float64)
	for key, val := range raw {
		if key == "_rawValues" {
			var rv map[string]any
			if err := json.Unmarshal(val, &rv); err == nil {
				m.RawValues = rv
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(val, &f); err == nil {
			m.Features[key] = f
		}
	}
	return nil
}

// MarshalJSON reconstruye la forma plana que envia la capa de extraccion.
func (m FeatureMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Features)+1)
	for k, v := range m.Features {
		out[k] = v
	}
	if len(m.RawValues) > 0 {
		out["_rawValues"] = m.RawValues
	}
	return json.Marshal(out)
}

// PlatformData agrupa los feature maps por dominio conductual.
type PlatformData map[string]FeatureMap
