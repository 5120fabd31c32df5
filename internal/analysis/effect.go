package analysis

import "twin-profile/internal/domain"

// baseConfidence asigna la confianza inicial segun la magnitud del efecto.
func baseConfidence(effect domain.EffectSize) float64 {
	switch effect {
	case domain.EffectLarge:
		return 0.9
	case domain.EffectMedium:
		return 0.75
	case domain.EffectSmall:
		return 0.6
	default:
		return 0.5
	}
}

// evidenceConfidence aplica los boosts por tamano de muestra, con tope 0.95.
func evidenceConfidence(effect domain.EffectSize, sampleSize *int) float64 {
	conf := baseConfidence(effect)
	if sampleSize != nil {
		if *sampleSize > 1000 {
			conf += 0.1
		}
		if *sampleSize > 5000 {
			conf += 0.05
		}
	}
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf
}

// conflictWeight pondera la evidencia al medir desacuerdo direccional.
func conflictWeight(effect domain.EffectSize) int {
	switch effect {
	case domain.EffectLarge:
		return 3
	case domain.EffectMedium:
		return 2
	default:
		return 1
	}
}

// confidenceWeight es el aporte de cada evidencia a la confianza final.
func confidenceWeight(effect domain.EffectSize) float64 {
	switch effect {
	case domain.EffectLarge:
		return 0.3
	case domain.EffectMedium:
		return 0.2
	case domain.EffectSmall:
		return 0.1
	default:
		return 0.05
	}
}

// maxConfidence es el techo duro de cualquier confianza reportada.
const maxConfidence = 0.95
