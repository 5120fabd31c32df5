package analysis

// Limitaciones metodologicas por dominio conductual. Se adjuntan al
// resultado de cada analisis y terminan en methodology.limitations.
var domainLimitations = map[string][]string{
	"music": {
		"music preference correlations come from self-report studies; streaming behavior is an imperfect proxy",
	},
	"video": {
		"watch-history categories are platform-assigned and may mislabel content",
	},
	"streaming": {
		"viewing happens on shared accounts more often than other platforms; signals may mix household members",
	},
	"coding": {
		"public repository activity underrepresents work done in private or at an employer",
	},
	"calendar": {
		"calendar events capture scheduled life only; spontaneous social activity is invisible",
	},
	"communication": {
		"tone metrics are derived from text only and miss sarcasm and context",
	},
}

// platformAliases traduce el nombre de la plataforma de origen al dominio
// conductual que la analiza. Claves ya canonicas pasan tal cual.
var platformAliases = map[string]string{
	"spotify": "music",
	"youtube": "video",
	"github":  "coding",
	"gmail":   "communication",
	"netflix": "streaming",
}

// canonicalDomain resuelve alias de plataforma; un nombre desconocido es su
// propio dominio.
func canonicalDomain(name string) string {
	if dom, ok := platformAliases[name]; ok {
		return dom
	}
	return name
}

// genericLimitation aplica a cualquier dominio, conocido o no.
const genericLimitation = "correlational evidence only; individual behavior can deviate from population-level findings"

func limitationsFor(domainName string) []string {
	lims := []string{genericLimitation}
	if extra, ok := domainLimitations[domainName]; ok {
		lims = append(lims, extra...)
	}
	return lims
}
