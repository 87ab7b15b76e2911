package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"reqcast/internal/pipeline"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath string
	LogDir   string

	// Defaults applied to briefs whose metadata leaves these unset.
	DefaultTeamSize           int
	DefaultWorkingDaysPerWeek int

	Pipeline pipeline.Options

	GeminiProject  string
	GeminiLocation string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}
	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	// 4. Pipeline options
	opts := pipeline.DefaultOptions()
	opts.QualityThreshold = getEnvFloat("REQCAST_QUALITY_THRESHOLD", opts.QualityThreshold)
	opts.MaxIterations = getEnvInt("REQCAST_MAX_ITERATIONS", opts.MaxIterations)
	opts.CollaboratorTimeout = time.Duration(getEnvInt("REQCAST_COLLABORATOR_TIMEOUT_SECONDS", 60)) * time.Second

	opts.Baseline.ProductivityFactor = getEnvFloat("REQCAST_PRODUCTIVITY_FACTOR", opts.Baseline.ProductivityFactor)
	opts.Baseline.BaseBuffer = getEnvFloat("REQCAST_BASE_BUFFER", opts.Baseline.BaseBuffer)
	opts.Baseline.BufferCoefficient = getEnvFloat("REQCAST_BUFFER_COEFFICIENT", opts.Baseline.BufferCoefficient)

	opts.Simulation.Trials = getEnvInt("REQCAST_TRIALS", opts.Simulation.Trials)
	opts.Simulation.Seed = int64(getEnvInt("REQCAST_SEED", 0))
	opts.Simulation.MaxFailureFraction = getEnvFloat("REQCAST_MAX_FAILURE_FRACTION", opts.Simulation.MaxFailureFraction)

	opts.Risk.Thresholds.MediumMin = getEnvInt("REQCAST_SEVERITY_MEDIUM_MIN", opts.Risk.Thresholds.MediumMin)
	opts.Risk.Thresholds.HighMin = getEnvInt("REQCAST_SEVERITY_HIGH_MIN", opts.Risk.Thresholds.HighMin)
	opts.Risk.Thresholds.CriticalMin = getEnvInt("REQCAST_SEVERITY_CRITICAL_MIN", opts.Risk.Thresholds.CriticalMin)
	opts.Risk.TopN = getEnvInt("REQCAST_TOP_RISKS", opts.Risk.TopN)

	cfg := &AppConfig{
		DataPath:                  dataPath,
		LogDir:                    logDir,
		DefaultTeamSize:           getEnvInt("REQCAST_DEFAULT_TEAM_SIZE", 3),
		DefaultWorkingDaysPerWeek: getEnvInt("REQCAST_DEFAULT_WORKING_DAYS", 5),
		Pipeline:                  opts,
		GeminiProject:             getEnv("REQCAST_GEMINI_PROJECT", ""),
		GeminiLocation:            getEnv("REQCAST_GEMINI_LOCATION", "us-central1"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric environment value")
	}
	return fallback
}
