package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"twin-profile/internal/domain"
	"twin-profile/internal/knowledge"
)

// ErrNoPlatformData es el unico fallo duro del motor: ningun dominio trajo
// datos. El caller debe pedirle al usuario que conecte plataformas.
var ErrNoPlatformData = errors.New("no connected platform produced behavioral data")

// DomainRunner es el contrato que el orquestador exige a cada analizador.
type DomainRunner interface {
	Domain() string
	Analyze(subjectID string, features domain.FeatureMap) domain.DomainResult
}

// AnalyzerFactory construye el runner para un dominio solicitado.
type AnalyzerFactory func(domainName string) DomainRunner

// DefaultAnalyzerFactory crea analizadores genericos sobre la base de
// correlaciones compartida.
func DefaultAnalyzerFactory(kb *knowledge.Base, params Params, logger *zap.Logger) AnalyzerFactory {
	return func(domainName string) DomainRunner {
		return NewDomainAnalyzer(domainName, kb, params, logger)
	}
}

// Orchestrator enruta los datos por dominio a sus analizadores, los corre en
// paralelo, fusiona resultados, resuelve conflictos y sintetiza el perfil.
// Los analizadores son funciones puras sobre entradas inmutables, asi que el
// fan-out no necesita locking; la unica barrera es esperar a que terminen.
type Orchestrator struct {
	factory  AnalyzerFactory
	resolver ConflictResolver
	logger   *zap.Logger
}

// NewOrchestrator crea el orquestador de analisis multi-dominio.
func NewOrchestrator(factory AnalyzerFactory, params Params, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		factory:  factory,
		resolver: ConflictResolver{Penalty: params.ConflictPenalty},
		logger:   logger,
	}
}

// Run ejecuta el pipeline completo para un sujeto. Un dominio que falla se
// registra y se excluye de la agregacion sin abortar al resto: resultados
// parciales siempre ganan sobre fallo total.
func (o *Orchestrator) Run(ctx context.Context, subjectID string, data domain.PlatformData) (domain.PersonalityProfile, error) {
	start := time.Now()

	// Routing: solo dominios con feature map no vacio, en orden estable.
	var selected []string
	for name, features := range data {
		if !features.Empty() {
			selected = append(selected, name)
		}
	}
	sort.Strings(selected)
	if len(selected) == 0 {
		return domain.PersonalityProfile{}, ErrNoPlatformData
	}

	// Analyzing: fan-out concurrente con barrera. Un panico dentro de un
	// analizador es dato (dominio fallido), nunca un abort del grupo.
	results := make([]domain.DomainResult, len(selected))
	g, _ := errgroup.WithContext(ctx)
	for i, name := range selected {
		dom := canonicalDomain(name)
		runner := o.factory(dom)
		features := data[name]
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					results[i] = domain.DomainResult{
						Domain:  dom,
						Success: false,
						Error:   fmt.Sprintf("analyzer panic: %v", rec),
					}
				}
			}()
			results[i] = runner.Analyze(subjectID, features)
			return nil
		})
	}
	_ = g.Wait()

	profile := o.merge(subjectID, results)
	profile.ElapsedMS = time.Since(start).Milliseconds()

	o.logger.Info("analysis complete",
		zap.String("subject_id", subjectID),
		zap.Strings("domains", selected),
		zap.Int("agents_used", len(profile.Methodology.AgentsUsed)),
		zap.Int("total_evidence", profile.Methodology.TotalEvidence),
		zap.Int64("elapsed_ms", profile.ElapsedMS))

	return profile, nil
}

// merge cubre los estados Merging, Resolving y Synthesizing.
func (o *Orchestrator) merge(subjectID string, results []domain.DomainResult) domain.PersonalityProfile {
	const baseScore = 50

	scores := make(map[domain.Dimension]int, len(domain.AllDimensions))
	evidence := make(map[domain.Dimension][]domain.EvidenceItem)
	for _, dim := range domain.AllDimensions {
		scores[dim] = baseScore
	}

	summary := map[domain.EffectSize]int{
		domain.EffectLarge:  0,
		domain.EffectMedium: 0,
		domain.EffectSmall:  0,
	}
	var (
		agentsUsed    []string
		totalEvidence int
		citations     []string
		limitations   []string
	)
	seenCitations := make(map[string]struct{})
	seenLimitations := make(map[string]struct{})

	// Merging: acumular ajustes y evidencia de los dominios exitosos.
	for _, res := range results {
		if !res.Success {
			o.logger.Warn("domain analysis failed",
				zap.String("subject_id", subjectID),
				zap.String("domain", res.Domain),
				zap.String("error", res.Error))
			continue
		}
		agentsUsed = append(agentsUsed, res.Domain)

		for dim, inf := range res.Inferences {
			scores[dim] += inf.ScoreAdjustment
			for _, item := range inf.AllEvidence {
				if item.Domain == "" {
					item.Domain = res.Domain
				}
				evidence[dim] = append(evidence[dim], item)
				summary[item.EffectSize]++
				totalEvidence++
			}
		}
		for _, cit := range res.Citations {
			if _, dup := seenCitations[cit]; !dup {
				seenCitations[cit] = struct{}{}
				citations = append(citations, cit)
			}
		}
		for _, lim := range res.Limitations {
			if _, dup := seenLimitations[lim]; !dup {
				seenLimitations[lim] = struct{}{}
				limitations = append(limitations, lim)
			}
		}
	}

	// Resolving + Synthesizing por dimension.
	dimensions := make(map[domain.Dimension]domain.DimensionScore, len(domain.AllDimensions))
	for _, dim := range domain.AllDimensions {
		items := evidence[dim]
		note, penalty := o.resolver.Resolve(items)

		confidence := 0.5
		for _, item := range items {
			confidence += confidenceWeight(item.EffectSize)
		}
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
		confidence -= penalty
		confidence = math.Round(confidence*100) / 100
		confidence = clamp(confidence, 0, maxConfidence)

		sortEvidence(items)

		dimensions[dim] = domain.DimensionScore{
			Score:           clampScore(scores[dim]),
			Confidence:      confidence,
			Evidence:        items,
			ConflictNote:    note,
			ConflictPenalty: penalty,
		}
	}

	return domain.PersonalityProfile{
		ID:         uuid.NewString(),
		SubjectID:  subjectID,
		Dimensions: dimensions,
		Citations:  citations,
		Methodology: domain.Methodology{
			AgentsUsed:        agentsUsed,
			TotalEvidence:     totalEvidence,
			EffectSizeSummary: summary,
			Limitations:       limitations,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// sortEvidence ordena efecto grande primero, luego |r| descendente.
func sortEvidence(items []domain.EvidenceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := domain.EffectRank(items[i].EffectSize), domain.EffectRank(items[j].EffectSize)
		if ri != rj {
			return ri > rj
		}
		return math.Abs(items[i].Citation.R) > math.Abs(items[j].Citation.R)
	})
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
