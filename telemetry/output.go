package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/drowse/config"
	"github.com/pthm-cable/drowse/efficiency"
	"github.com/pthm-cable/drowse/energy"
)

// EventRecord is one timeline event in events.csv.
type EventRecord struct {
	Label        string  `csv:"label"`
	Minutes      int     `csv:"minutes"`
	Kind         string  `csv:"kind"`
	EnergyBefore float64 `csv:"energy_before"`
	EnergyAfter  float64 `csv:"energy_after"`
	IsSnacking   bool    `csv:"is_snacking"`
	IsInPeriod   bool    `csv:"is_in_period"`
}

// IntervalRecord is one constant-efficiency interval in efficiencies.csv.
type IntervalRecord struct {
	Label string `csv:"label"`
	efficiency.Interval
}

// InventoryRecord is one point of the fill CDF in inventory.csv.
type InventoryRecord struct {
	Label       string  `csv:"label"`
	Helps       int     `csv:"helps"`
	Probability float64 `csv:"probability"`
}

// csvFile appends records to a CSV file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir string

	events    *csvFile
	intervals *csvFile
	inventory *csvFile
	summary   *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{"events.csv", &om.events},
		{"efficiencies.csv", &om.intervals},
		{"inventory.csv", &om.inventory},
		{"summary.csv", &om.summary},
	}
	for _, entry := range files {
		f, err := os.Create(filepath.Join(dir, entry.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", entry.name, err)
		}
		*entry.dst = &csvFile{f: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteRun appends every table of one run under the given label.
func (om *OutputManager) WriteRun(label string, params energy.Parameters, res *efficiency.Result) error {
	if om == nil || res == nil {
		return nil
	}

	events := make([]EventRecord, len(res.Events))
	for i, ev := range res.Events {
		events[i] = EventRecord{
			Label:        label,
			Minutes:      ev.Minutes,
			Kind:         ev.Kind.String(),
			EnergyBefore: ev.EnergyBefore,
			EnergyAfter:  ev.EnergyAfter,
			IsSnacking:   ev.IsSnacking,
			IsInPeriod:   ev.IsInPeriod,
		}
	}
	if len(events) > 0 {
		if err := om.events.write(events); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
	}

	intervals := make([]IntervalRecord, len(res.Efficiencies))
	for i, iv := range res.Efficiencies {
		intervals[i] = IntervalRecord{Label: label, Interval: iv}
	}
	if len(intervals) > 0 {
		if err := om.intervals.write(intervals); err != nil {
			return fmt.Errorf("writing efficiencies: %w", err)
		}
	}

	if len(res.InventoryCDF) > 0 {
		inv := make([]InventoryRecord, len(res.InventoryCDF))
		for i, p := range res.InventoryCDF {
			inv[i] = InventoryRecord{Label: label, Helps: i, Probability: p}
		}
		if err := om.inventory.write(inv); err != nil {
			return fmt.Errorf("writing inventory: %w", err)
		}
	}

	return om.WriteSummary(Summarize(label, params, res))
}

// WriteSummary appends a summary row to summary.csv.
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}
	if err := om.summary.write([]Summary{s}); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.events, om.intervals, om.inventory, om.summary} {
		if c == nil || c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
