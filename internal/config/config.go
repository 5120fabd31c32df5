package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	DatasetPath   string `env:"DATASET_PATH" envDefault:"data/correlations.json"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLHours int    `env:"CACHE_TTL_HOURS" envDefault:"24"`

	// Constantes del motor de inferencia. Los defaults replican el
	// comportamiento original; no se derivan de ningun modelo estadistico.
	MinAbsCorrelation float64 `env:"MIN_ABS_CORRELATION" envDefault:"0.15"`
	AdjustmentScale   float64 `env:"ADJUSTMENT_SCALE" envDefault:"30"`
	ConflictPenalty   float64 `env:"CONFLICT_PENALTY" envDefault:"0.1"`
	FeatureThreshold  float64 `env:"FEATURE_THRESHOLD" envDefault:"0.5"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
