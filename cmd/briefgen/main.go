package main

import (
	"flag"
	"fmt"
	"os"

	"reqcast/cmd/briefgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, heavy")
	outDir := flag.String("out", "./.cache", "Output directory for brief files")
	count := flag.Int("count", 12, "Number of requirements to generate")
	seed := flag.Int64("seed", 1, "Random seed")
	team := flag.Int("team", 4, "Team size written into the brief metadata")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Seed:     *seed,
		TeamSize: *team,
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Seed, *outDir)

	brief := engine.Generate(cfg)

	name := fmt.Sprintf("brief_%s_%d", cfg.Scenario, cfg.Seed)
	if err := engine.Save(*outDir, name, brief); err != nil {
		fmt.Printf("Failed to save brief: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
