package analysis

import (
	"fmt"

	"twin-profile/internal/domain"
)

// ConflictResolver detecta desacuerdo direccional entre evidencias de una
// misma dimension. El conflicto no se esconde promediando: se reporta como
// nota explicita y una penalizacion plana de confianza. El score acumulado
// queda intacto.
type ConflictResolver struct {
	Penalty float64
}

// Resolve examina la evidencia combinada de una dimension. Devuelve la nota
// de conflicto y la penalizacion; ambas vacias si no hay conflicto.
func (r ConflictResolver) Resolve(evidence []domain.EvidenceItem) (string, float64) {
	if len(evidence) < 2 {
		return "", 0
	}

	var positive, negative int
	for _, item := range evidence {
		w := conflictWeight(item.EffectSize)
		if item.Direction == domain.DirectionPositive {
			positive += w
		} else {
			negative += w
		}
	}
	if positive == 0 || negative == 0 {
		return "", 0
	}

	var note string
	switch {
	case positive > negative:
		note = fmt.Sprintf("weighted toward positive (%d vs %d)", positive, negative)
	case negative > positive:
		note = fmt.Sprintf("weighted toward negative (%d vs %d)", negative, positive)
	default:
		note = fmt.Sprintf("evenly split (%d vs %d)", positive, negative)
	}
	return note, r.Penalty
}
