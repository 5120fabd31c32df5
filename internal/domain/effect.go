package domain

import "math"

// Umbrales estandar para clasificar la magnitud de una correlacion.
const (
	largeEffectMin  = 0.5
	mediumEffectMin = 0.3
	smallEffectMin  = 0.1
)

// ClassifyEffectSize deriva el bucket cualitativo a partir de |r|.
func ClassifyEffectSize(r float64) EffectSize {
	abs := math.Abs(r)
	switch {
	case abs >= largeEffectMin:
		return EffectLarge
	case abs >= mediumEffectMin:
		return EffectMedium
	case abs >= smallEffectMin:
		return EffectSmall
	default:
		return EffectTrivial
	}
}

// EffectRank ordena los buckets de mayor a menor para sorting de evidencia.
func EffectRank(e EffectSize) int {
	switch e {
	case EffectLarge:
		return 3
	case EffectMedium:
		return 2
	case EffectSmall:
		return 1
	default:
		return 0
	}
}
