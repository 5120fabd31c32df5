package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"twin-profile/internal/analysis"
	"twin-profile/internal/domain"
	"twin-profile/internal/knowledge"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// profile_check corre el motor de inferencia contra un archivo de feature
// maps sin levantar el API ni tocar la base. Util para validar el dataset y
// revisar a ojo la evidencia generada.
func main() {
	dataPath := flag.String("data", "", "JSON file with platform data (domain -> feature map)")
	datasetPath := flag.String("dataset", "data/correlations.json", "correlation dataset path")
	subjectID := flag.String("subject", "subject-check", "subject id for the run")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("usage: profile_check -data platform_data.json [-dataset data/correlations.json]")
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	raw, err := os.ReadFile(*dataPath)
	if err != nil {
		log.Fatalf("read platform data: %v", err)
	}
	var data domain.PlatformData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatalf("parse platform data: %v", err)
	}

	kb := knowledge.Load(*datasetPath, logger)
	params := analysis.DefaultParams()
	orch := analysis.NewOrchestrator(
		analysis.DefaultAnalyzerFactory(kb, params, logger),
		params,
		logger,
	)

	profile, err := orch.Run(context.Background(), *subjectID, data)
	if err != nil {
		if errors.Is(err, analysis.ErrNoPlatformData) {
			log.Fatal("no domain in the input had usable features; nothing to analyze")
		}
		log.Fatalf("analysis failed: %v", err)
	}

	for _, dim := range domain.AllDimensions {
		score := profile.Dimensions[dim]
		fmt.Printf("%s[%s]%s score=%d confidence=%.2f evidence=%d",
			colorCyan, dim, colorReset, score.Score, score.Confidence, len(score.Evidence))
		if score.ConflictNote != "" {
			fmt.Printf(" conflict=%q", score.ConflictNote)
		}
		fmt.Println()
		for _, ev := range score.Evidence {
			fmt.Printf("  %s%s%s (%s, %s)\n", colorGreen, ev.HumanReadable, colorReset, ev.Domain, ev.EffectSize)
		}
	}

	dashboard := analysis.FormatForDashboard(profile)
	out, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		log.Fatalf("marshal dashboard: %v", err)
	}
	fmt.Println("\n==== Dashboard JSON ====")
	fmt.Println(string(out))
}
