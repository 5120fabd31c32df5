package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"twin-profile/internal/domain"
)

type fakeRunner struct {
	name   string
	result domain.DomainResult
	panics bool
}

func (f *fakeRunner) Domain() string { return f.name }

func (f *fakeRunner) Analyze(string, domain.FeatureMap) domain.DomainResult {
	if f.panics {
		panic("analyzer exploded")
	}
	return f.result
}

func fakeFactory(runners map[string]DomainRunner) AnalyzerFactory {
	return func(name string) DomainRunner {
		if r, ok := runners[name]; ok {
			return r
		}
		return &fakeRunner{name: name, result: domain.DomainResult{
			Domain: name, Success: false, Error: "unknown domain",
		}}
	}
}

func someData(domains ...string) domain.PlatformData {
	data := make(domain.PlatformData)
	for _, d := range domains {
		data[d] = domain.FeatureMap{Features: map[string]float64{"whatever": 0.8}}
	}
	return data
}

func largeEvidence(dom string, adj int) domain.EvidenceItem {
	return domain.EvidenceItem{
		Feature: "f_large", Dimension: domain.DimensionExtraversion, Domain: dom,
		Value: 0.8, Direction: domain.DirectionPositive, EffectSize: domain.EffectLarge,
		ScoreAdjustment: adj, Confidence: 0.9,
		Citation: domain.Citation{Source: "src_a", R: 0.52, EffectSize: domain.EffectLarge},
	}
}

func smallNegativeEvidence(dom string, adj int) domain.EvidenceItem {
	return domain.EvidenceItem{
		Feature: "f_small", Dimension: domain.DimensionExtraversion, Domain: dom,
		Value: 0.3, Direction: domain.DirectionNegative, EffectSize: domain.EffectSmall,
		ScoreAdjustment: adj, Confidence: 0.6,
		Citation: domain.Citation{Source: "src_b", R: 0.2, EffectSize: domain.EffectSmall},
	}
}

func successResult(dom string, items ...domain.EvidenceItem) domain.DomainResult {
	adjustment := 0
	for _, it := range items {
		adjustment += it.ScoreAdjustment
	}
	return domain.DomainResult{
		Domain:  dom,
		Success: true,
		Inferences: map[domain.Dimension]domain.DimensionInference{
			domain.DimensionExtraversion: {
				ScoreAdjustment: adjustment,
				EvidenceCount:   len(items),
				AllEvidence:     items,
			},
		},
		Citations:   []string{"Citation " + dom},
		Limitations: []string{"limitation " + dom},
	}
}

func newTestOrchestrator(factory AnalyzerFactory) *Orchestrator {
	return NewOrchestrator(factory, DefaultParams(), zap.NewNop())
}

func TestRunNoDataIsTerminal(t *testing.T) {
	o := newTestOrchestrator(fakeFactory(nil))

	_, err := o.Run(context.Background(), "subject-1", domain.PlatformData{})
	if !errors.Is(err, ErrNoPlatformData) {
		t.Fatalf("expected ErrNoPlatformData, got %v", err)
	}

	// Dominios presentes pero sin features tampoco cuentan.
	_, err = o.Run(context.Background(), "subject-1", domain.PlatformData{
		"music": {RawValues: map[string]any{"only": "raw"}},
	})
	if !errors.Is(err, ErrNoPlatformData) {
		t.Fatalf("expected ErrNoPlatformData for empty feature maps, got %v", err)
	}
}

func TestRunConflictDetection(t *testing.T) {
	runners := map[string]DomainRunner{
		"music":    &fakeRunner{name: "music", result: successResult("music", largeEvidence("music", 10))},
		"calendar": &fakeRunner{name: "calendar", result: successResult("calendar", smallNegativeEvidence("calendar", -3))},
	}
	o := newTestOrchestrator(fakeFactory(runners))

	profile, err := o.Run(context.Background(), "subject-1", someData("music", "calendar"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	dim := profile.Dimensions[domain.DimensionExtraversion]
	if dim.ConflictNote != "weighted toward positive (3 vs 1)" {
		t.Fatalf("unexpected conflict note: %q", dim.ConflictNote)
	}
	if dim.ConflictPenalty != 0.1 {
		t.Fatalf("expected conflict penalty 0.1, got %v", dim.ConflictPenalty)
	}
	// Sin penalizacion: 0.5 + 0.3 (large) + 0.1 (small) = 0.9 → 0.8 exactos.
	if dim.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8 after penalty, got %v", dim.Confidence)
	}
	// El score no se penaliza, solo la confianza: 50 + 10 - 3 = 57.
	if dim.Score != 57 {
		t.Fatalf("expected score 57, got %d", dim.Score)
	}
	// Evidencia ordenada: large primero.
	if dim.Evidence[0].EffectSize != domain.EffectLarge {
		t.Fatalf("expected large evidence first, got %s", dim.Evidence[0].EffectSize)
	}
}

func TestRunPartialFailureKeepsOtherDomains(t *testing.T) {
	runners := map[string]DomainRunner{
		"music":    &fakeRunner{name: "music", result: successResult("music", largeEvidence("music", 10))},
		"video":    &fakeRunner{name: "video", panics: true},
		"calendar": &fakeRunner{name: "calendar", result: successResult("calendar", largeEvidence("calendar", 5))},
	}
	o := newTestOrchestrator(fakeFactory(runners))

	profile, err := o.Run(context.Background(), "subject-1", someData("music", "video", "calendar"))
	if err != nil {
		t.Fatalf("a failing domain must not abort the run, got %v", err)
	}

	if len(profile.Methodology.AgentsUsed) != 2 {
		t.Fatalf("expected exactly 2 agents used, got %v", profile.Methodology.AgentsUsed)
	}
	for _, agent := range profile.Methodology.AgentsUsed {
		if agent == "video" {
			t.Fatalf("failed domain must be absent from agents_used")
		}
	}
	dim := profile.Dimensions[domain.DimensionExtraversion]
	if dim.Score != 65 {
		t.Fatalf("expected evidence from surviving domains (50+10+5), got %d", dim.Score)
	}
	if profile.Methodology.TotalEvidence != 2 {
		t.Fatalf("expected 2 evidence items, got %d", profile.Methodology.TotalEvidence)
	}
}

func TestRunScoreClamping(t *testing.T) {
	big := largeEvidence("music", 90)
	low := smallNegativeEvidence("calendar", -120)
	runners := map[string]DomainRunner{
		"music":    &fakeRunner{name: "music", result: successResult("music", big)},
		"calendar": &fakeRunner{name: "calendar", result: successResult("calendar", low)},
	}

	o := newTestOrchestrator(fakeFactory(map[string]DomainRunner{"music": runners["music"]}))
	profile, err := o.Run(context.Background(), "subject-1", someData("music"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := profile.Dimensions[domain.DimensionExtraversion].Score; got != 100 {
		t.Fatalf("expected score clamped to 100, got %d", got)
	}

	o = newTestOrchestrator(fakeFactory(map[string]DomainRunner{"calendar": runners["calendar"]}))
	profile, err = o.Run(context.Background(), "subject-1", someData("calendar"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := profile.Dimensions[domain.DimensionExtraversion].Score; got != 0 {
		t.Fatalf("expected score clamped to 0, got %d", got)
	}
}

func TestRunConfidenceCap(t *testing.T) {
	items := []domain.EvidenceItem{
		largeEvidence("music", 5),
		largeEvidence("music", 5),
		largeEvidence("music", 5),
	}
	runners := map[string]DomainRunner{
		"music": &fakeRunner{name: "music", result: successResult("music", items...)},
	}
	o := newTestOrchestrator(fakeFactory(runners))

	profile, err := o.Run(context.Background(), "subject-1", someData("music"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// 0.5 + 3*0.3 = 1.4, capeado al techo 0.95.
	if got := profile.Dimensions[domain.DimensionExtraversion].Confidence; got != 0.95 {
		t.Fatalf("expected confidence capped at 0.95, got %v", got)
	}
}

func TestRunSilentDimensionsStayAtBase(t *testing.T) {
	runners := map[string]DomainRunner{
		"music": &fakeRunner{name: "music", result: successResult("music", largeEvidence("music", 10))},
	}
	o := newTestOrchestrator(fakeFactory(runners))

	profile, err := o.Run(context.Background(), "subject-1", someData("music"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(profile.Dimensions) != 5 {
		t.Fatalf("profile must carry all five dimensions, got %d", len(profile.Dimensions))
	}
	open := profile.Dimensions[domain.DimensionOpenness]
	if open.Score != 50 {
		t.Fatalf("dimension without evidence keeps base 50, got %d", open.Score)
	}
	if open.Confidence != 0.5 {
		t.Fatalf("dimension without evidence keeps base confidence 0.5, got %v", open.Confidence)
	}
	if len(open.Evidence) != 0 {
		t.Fatalf("expected no evidence for silent dimension")
	}
}

func TestRunDeduplicatesCitationsAndLimitations(t *testing.T) {
	resA := successResult("music", largeEvidence("music", 5))
	resA.Citations = []string{"Shared citation", "Music citation"}
	resA.Limitations = []string{"shared limitation"}
	resB := successResult("calendar", largeEvidence("calendar", 5))
	resB.Citations = []string{"Shared citation"}
	resB.Limitations = []string{"shared limitation", "calendar limitation"}

	runners := map[string]DomainRunner{
		"music":    &fakeRunner{name: "music", result: resA},
		"calendar": &fakeRunner{name: "calendar", result: resB},
	}
	o := newTestOrchestrator(fakeFactory(runners))

	profile, err := o.Run(context.Background(), "subject-1", someData("music", "calendar"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(profile.Citations) != 2 {
		t.Fatalf("expected deduplicated citations, got %v", profile.Citations)
	}
	if len(profile.Methodology.Limitations) != 2 {
		t.Fatalf("expected deduplicated limitations, got %v", profile.Methodology.Limitations)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	kb := testKB()
	params := DefaultParams()
	factory := DefaultAnalyzerFactory(kb, params, zap.NewNop())
	o := NewOrchestrator(factory, params, zap.NewNop())

	data := domain.PlatformData{
		"calendar": {Features: map[string]float64{"social_event_ratio": 0.8, "collaboration_ratio": 0.2}},
		"music":    {Features: map[string]float64{"audio_valence": 0.2}},
	}

	first, err := o.Run(context.Background(), "subject-1", data)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := o.Run(context.Background(), "subject-1", data)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Todo menos ID, timestamps y elapsed debe ser identico.
	if !reflect.DeepEqual(first.Dimensions, second.Dimensions) {
		t.Fatalf("dimensions differ across identical runs:\n%+v\n%+v", first.Dimensions, second.Dimensions)
	}
	if !reflect.DeepEqual(first.Citations, second.Citations) {
		t.Fatalf("citations differ across identical runs")
	}
	if !reflect.DeepEqual(first.Methodology, second.Methodology) {
		t.Fatalf("methodology differs across identical runs")
	}
}

func TestRunResolvesPlatformAliases(t *testing.T) {
	kb := testKB()
	params := DefaultParams()
	o := NewOrchestrator(DefaultAnalyzerFactory(kb, params, zap.NewNop()), params, zap.NewNop())

	// spotify enruta al dominio music.
	profile, err := o.Run(context.Background(), "subject-1", domain.PlatformData{
		"spotify": {Features: map[string]float64{"audio_valence": 0.2}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := profile.Methodology.AgentsUsed; len(got) != 1 || got[0] != "music" {
		t.Fatalf("expected agent music for spotify data, got %v", got)
	}
	dim := profile.Dimensions[domain.DimensionNeuroticism]
	if len(dim.Evidence) != 1 || dim.Evidence[0].Domain != "music" {
		t.Fatalf("expected evidence tagged with canonical domain, got %+v", dim.Evidence)
	}
}

func TestRunEffectSizeSummary(t *testing.T) {
	runners := map[string]DomainRunner{
		"music": &fakeRunner{name: "music", result: successResult("music",
			largeEvidence("music", 5), smallNegativeEvidence("music", -2))},
	}
	o := newTestOrchestrator(fakeFactory(runners))

	profile, err := o.Run(context.Background(), "subject-1", someData("music"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	summary := profile.Methodology.EffectSizeSummary
	if summary[domain.EffectLarge] != 1 || summary[domain.EffectSmall] != 1 || summary[domain.EffectMedium] != 0 {
		t.Fatalf("unexpected effect size summary: %v", summary)
	}
}
