package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"twin-profile/internal/domain"
)

// RenderTemplate interpola placeholders de la forma {clave} usando vars.
// Un placeholder sin resolver o sin cerrar devuelve error: la frase de
// evidencia nunca debe llegar al usuario con huecos.
func RenderTemplate(tpl string, vars map[string]string) (string, error) {
	var sb strings.Builder
	rest := tpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		sb.WriteString(rest[:open])
		rest = rest[open+1:]

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in template %q", tpl)
		}
		key := rest[:end]
		rest = rest[end+1:]

		val, ok := vars[key]
		if !ok {
			return "", fmt.Errorf("unresolved placeholder %q in template %q", key, tpl)
		}
		sb.WriteString(val)
	}
}

// templateVars arma el mapa de interpolacion: {value} mas {rawValue.<clave>}.
func templateVars(value float64, rawValues map[string]any) map[string]string {
	vars := map[string]string{
		"value": formatFloat(value),
	}
	for key, raw := range rawValues {
		vars["rawValue."+key] = formatRawValue(raw)
	}
	return vars
}

// formatFloat imprime sin ceros de relleno: 0.35 → "0.35", 1 → "1".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRawValue(v any) string {
	switch t := v.(type) {
	case float64:
		return formatFloat(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// fallbackSentence es la frase generica cuando el dataset no trae template.
func fallbackSentence(feature string, dim domain.Dimension, r float64) string {
	return fmt.Sprintf("%s correlates with %s (r=%s)", feature, dim, formatFloat(r))
}
