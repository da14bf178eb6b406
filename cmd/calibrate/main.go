// Command calibrate tunes a material's energy loss so that a weapon's round
// comes to rest at a target depth, and writes the tuned config.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/salvo/config"
	"github.com/pthm-cable/salvo/jobs"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	materialName := flag.String("material", "wood", "Material to calibrate")
	weaponName := flag.String("weapon", "rifle", "Weapon whose round sets the depth")
	depth := flag.Float64("depth", 0.3, "Target resting depth in meters")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := jobs.NewPool(cfg.Batch.Workers)
	defer pool.Close()

	cal, err := NewCalibrator(cfg, *materialName, *weaponName, pool)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}

	fmt.Printf("Calibrating %s against %s for a resting depth of %.3f m (max %d evals)\n",
		*materialName, *weaponName, *depth, *maxEvals)
	start := time.Now()

	loss, err := cal.Run(*depth, *maxEvals)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}
	got, err := cal.Depth(loss)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}

	fmt.Printf("Done after %d evaluations in %s\n", len(cal.Evals), time.Since(start).Round(time.Millisecond))
	fmt.Printf("  energy_loss: %.3f J/m (was %.3f)\n", loss, cfg.Materials[*materialName].EnergyLoss)
	fmt.Printf("  depth:       %.4f m\n", got)

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	f, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	if err := gocsv.MarshalFile(cal.Evals, f); err != nil {
		log.Printf("failed to write evaluation log: %v", err)
	}
	f.Close()

	tuned := cfg.Materials[*materialName]
	tuned.EnergyLoss = loss
	cfg.Materials[*materialName] = tuned

	configOutPath := filepath.Join(*outputDir, "calibrated_config.yaml")
	if err := cfg.WriteYAML(configOutPath); err != nil {
		log.Fatalf("failed to write config: %v", err)
	}
	fmt.Printf("\nCalibrated config saved to: %s\n", configOutPath)
}
