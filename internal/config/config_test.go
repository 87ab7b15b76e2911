package config

import (
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestGodotenvQuoting(t *testing.T) {
	content := `TEST_VAR='value with "double quotes"'`
	tmpfile, err := os.CreateTemp("", ".env.test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(tmpfile.Name())
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `value with "double quotes"`
	if env["TEST_VAR"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["TEST_VAR"])
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("REQCAST_TEST_STR", "hello")
	t.Setenv("REQCAST_TEST_INT", "1200")
	t.Setenv("REQCAST_TEST_FLOAT", "8.5")
	t.Setenv("REQCAST_TEST_BAD_INT", "not-a-number")

	if got := getEnv("REQCAST_TEST_STR", "fallback"); got != "hello" {
		t.Errorf("getEnv = %q, want hello", got)
	}
	if got := getEnv("REQCAST_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv fallback = %q", got)
	}
	if got := getEnvInt("REQCAST_TEST_INT", 1); got != 1200 {
		t.Errorf("getEnvInt = %d, want 1200", got)
	}
	if got := getEnvInt("REQCAST_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt with garbage value = %d, want fallback 7", got)
	}
	if got := getEnvFloat("REQCAST_TEST_FLOAT", 1); got != 8.5 {
		t.Errorf("getEnvFloat = %f, want 8.5", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("REQCAST_QUALITY_THRESHOLD", "8.5")
	t.Setenv("REQCAST_MAX_ITERATIONS", "5")
	t.Setenv("REQCAST_COLLABORATOR_TIMEOUT_SECONDS", "30")
	t.Setenv("REQCAST_TRIALS", "1200")
	t.Setenv("REQCAST_SEED", "42")
	t.Setenv("REQCAST_SEVERITY_CRITICAL_MIN", "18")
	t.Setenv("REQCAST_GEMINI_PROJECT", "demo-project")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Pipeline.QualityThreshold != 8.5 {
		t.Errorf("quality threshold = %f, want 8.5", cfg.Pipeline.QualityThreshold)
	}
	if cfg.Pipeline.MaxIterations != 5 {
		t.Errorf("max iterations = %d, want 5", cfg.Pipeline.MaxIterations)
	}
	if cfg.Pipeline.CollaboratorTimeout != 30*time.Second {
		t.Errorf("collaborator timeout = %v, want 30s", cfg.Pipeline.CollaboratorTimeout)
	}
	if cfg.Pipeline.Simulation.Trials != 1200 {
		t.Errorf("trials = %d, want 1200", cfg.Pipeline.Simulation.Trials)
	}
	if cfg.Pipeline.Simulation.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Pipeline.Simulation.Seed)
	}
	if cfg.Pipeline.Risk.Thresholds.CriticalMin != 18 {
		t.Errorf("critical min = %d, want 18", cfg.Pipeline.Risk.Thresholds.CriticalMin)
	}
	if cfg.GeminiProject != "demo-project" {
		t.Errorf("gemini project = %q, want demo-project", cfg.GeminiProject)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Pipeline.QualityThreshold != 7.0 {
		t.Errorf("quality threshold = %f, want 7.0", cfg.Pipeline.QualityThreshold)
	}
	if cfg.Pipeline.MaxIterations != 3 {
		t.Errorf("max iterations = %d, want 3", cfg.Pipeline.MaxIterations)
	}
	if cfg.DefaultTeamSize != 3 || cfg.DefaultWorkingDaysPerWeek != 5 {
		t.Errorf("team defaults = %d/%d, want 3/5", cfg.DefaultTeamSize, cfg.DefaultWorkingDaysPerWeek)
	}
	if cfg.GeminiLocation != "us-central1" {
		t.Errorf("gemini location = %q, want us-central1", cfg.GeminiLocation)
	}
}
