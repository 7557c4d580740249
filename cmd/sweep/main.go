// Package main sweeps sleep score and burst count for one helper and logs a
// summary row per grid cell.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/pthm-cable/drowse/box"
	"github.com/pthm-cable/drowse/config"
	"github.com/pthm-cable/drowse/profile"
	"github.com/pthm-cable/drowse/sim"
	"github.com/pthm-cable/drowse/telemetry"
)

// formatDuration formats a duration as MMmSSs, or with hours when longer.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	profilePath := flag.String("profile", "", "Helper profile YAML file")
	helperName := flag.String("helper", "", "Helper to sweep (empty = first in profile)")
	scoreMin := flag.Float64("score-min", 0, "Lowest sleep score")
	scoreMax := flag.Float64("score-max", 100, "Highest sleep score")
	scoreSteps := flag.Int("score-steps", 11, "Number of sleep score values")
	maxBursts := flag.Int("max-bursts", 4, "Highest burst count")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *profilePath == "" {
		log.Fatal("--profile is required")
	}
	if *maxBursts < 0 {
		log.Fatal("--max-bursts must not be negative")
	}

	// Load base config
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	file, err := profile.Load(*profilePath)
	if err != nil {
		log.Fatalf("failed to load profile: %v", err)
	}
	helper, ok := pickHelper(file, *helperName)
	if !ok {
		log.Fatalf("helper %q not found in %s", *helperName, *profilePath)
	}

	curve, err := sim.CurveFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to load curve: %v", err)
	}
	resolved, err := helper.Resolve(cfg, curve)
	if err != nil {
		log.Fatalf("failed to resolve helper: %v", err)
	}
	balance := sim.BalanceFromConfig(cfg)

	grid := NewGrid(*scoreMin, *scoreMax, *scoreSteps, *maxBursts)
	cells := grid.Cells()

	b := box.New(sim.Options{Balance: &balance})
	defer b.Close()
	for _, cell := range cells {
		b.Add(box.Member{
			Label:     grid.Label(cell),
			Params:    grid.Apply(file.Parameters, cell),
			Rates:     resolved.Rates,
			Inventory: resolved.Inventory,
		})
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		log.Printf("failed to write config snapshot: %v", err)
	}

	fmt.Printf("Sweeping %s: %d cells over %d axes\n", resolved.Label, len(cells), grid.Dim())
	startTime := time.Now()
	failed := b.RunAll()

	bestHelps := math.Inf(-1)
	bestLabel := ""
	for _, e := range b.Entries() {
		if e.Err != nil {
			log.Printf("%s: %v", e.Member.Label, e.Err)
			continue
		}
		summary := telemetry.Summarize(e.Member.Label, e.Member.Params, e.Result)
		if err := om.WriteSummary(summary); err != nil {
			log.Fatalf("failed to write summary: %v", err)
		}
		if helps := e.Result.HelpCount.Total(); helps > bestHelps {
			bestHelps = helps
			bestLabel = e.Member.Label
		}
	}

	spread := b.EfficiencySpread()
	fmt.Printf("\nSweep complete: %d cells (%d failed) in %s\n", len(cells), failed, formatDuration(time.Since(startTime)))
	fmt.Printf("Average efficiency: mean=%.3f p10=%.3f p50=%.3f p90=%.3f\n", spread.Mean, spread.P10, spread.P50, spread.P90)
	if bestLabel != "" {
		fmt.Printf("Most helps: %s (%.1f)\n", bestLabel, bestHelps)
	}
	fmt.Printf("Results saved to: %s\n", om.Dir())
}

// pickHelper returns the named helper, or the first when name is empty.
func pickHelper(file *profile.File, name string) (profile.Profile, bool) {
	if name == "" {
		return file.Helpers[0], true
	}
	for _, h := range file.Helpers {
		if h.Name == name {
			return h, true
		}
	}
	return profile.Profile{}, false
}
