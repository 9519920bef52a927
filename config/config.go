package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del mercado.
type Config struct {
	Market  MarketConfig  `yaml:"market"`
	Demo    DemoConfig    `yaml:"demo"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// MarketConfig controla las cuentas privilegiadas y el reloj de ledger.
type MarketConfig struct {
	Admin                 string `yaml:"admin"`
	Oracle                string `yaml:"oracle"`
	BetWindow             uint32 `yaml:"bet_window"`              // ledgers con apuestas abiertas
	RunWindow             uint32 `yaml:"run_window"`              // ledgers hasta poder resolver
	LedgerIntervalSeconds int    `yaml:"ledger_interval_seconds"` // duración de un ledger en el reloj de pared
}

// DemoConfig controla la simulación de rondas del modo demo.
type DemoConfig struct {
	Bettors       int     `yaml:"bettors"`
	Rounds        int     `yaml:"rounds"`
	BetsPerSecond float64 `yaml:"bets_per_second"` // ritmo máximo de entrada de apuestas
	StartPrice    uint64  `yaml:"start_price"`     // precio inicial, escala de 4 decimales
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// LedgerInterval devuelve la duración de un ledger como time.Duration.
func (c *Config) LedgerInterval() time.Duration {
	return time.Duration(c.Market.LedgerIntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VMARKET_ADMIN"); v != "" {
		cfg.Market.Admin = v
	}
	if v := os.Getenv("VMARKET_ORACLE"); v != "" {
		cfg.Market.Oracle = v
	}
	if v := os.Getenv("VMARKET_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Market.Admin == "" {
		cfg.Market.Admin = "GADMIN"
	}
	if cfg.Market.Oracle == "" {
		cfg.Market.Oracle = "GORACLE"
	}
	if cfg.Market.BetWindow == 0 {
		cfg.Market.BetWindow = 6
	}
	if cfg.Market.RunWindow == 0 {
		cfg.Market.RunWindow = 12
	}
	if cfg.Market.LedgerIntervalSeconds <= 0 {
		cfg.Market.LedgerIntervalSeconds = 5
	}
	if cfg.Demo.Bettors <= 0 {
		cfg.Demo.Bettors = 6
	}
	if cfg.Demo.Rounds <= 0 {
		cfg.Demo.Rounds = 3
	}
	if cfg.Demo.BetsPerSecond <= 0 {
		cfg.Demo.BetsPerSecond = 20
	}
	if cfg.Demo.StartPrice == 0 {
		cfg.Demo.StartPrice = 30_0000 // 30.0000
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "vmarket.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
