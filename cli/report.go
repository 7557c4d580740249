package cli

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pthm-cable/drowse/box"
	"github.com/pthm-cable/drowse/inventory"
	"github.com/pthm-cable/drowse/storage"
	"github.com/pthm-cable/drowse/telemetry"
)

// reporter prints human-readable tables with locale-aware numbers.
type reporter struct {
	w io.Writer
	p *message.Printer
}

func newReporter(w io.Writer, lang string) *reporter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &reporter{w: w, p: message.NewPrinter(tag)}
}

func (r *reporter) results(entries []box.Entry, quantiles []float64) {
	r.p.Fprintf(r.w, "%-16s %9s %7s %7s %7s %9s %7s %7s %6s\n",
		"helper", "freq(s)", "eff", "awake", "asleep", "helps", "skill1", "skill2", "full")
	for _, e := range entries {
		if e.Err != nil {
			r.p.Fprintf(r.w, "%-16s failed: %v\n", e.Member.Label, e.Err)
			continue
		}
		res := e.Result
		full := "never"
		if res.TimeToFullInventory >= 0 {
			full = r.p.Sprintf("%d", int(res.TimeToFullInventory))
		}
		r.p.Fprintf(r.w, "%-16s %9.0f %7.3f %7.3f %7.3f %9.1f %7.3f %7.3f %6s\n",
			e.Member.Label,
			res.FrequencySeconds,
			res.AverageEfficiency.Total,
			res.AverageEfficiency.Awake,
			res.AverageEfficiency.Asleep,
			res.HelpCount.Total(),
			res.SkillProbabilityAfterWakeup.Once,
			res.SkillProbabilityAfterWakeup.Twice,
			full,
		)
		if res.InventoryCDF == nil {
			continue
		}
		for _, q := range quantiles {
			helps := inventory.HelpsAtProbability(res.InventoryCDF, q)
			if helps < 0 {
				r.p.Fprintf(r.w, "  p%.0f fill: not reached\n", q*100)
				continue
			}
			r.p.Fprintf(r.w, "  p%.0f fill: %d helps\n", q*100, helps)
		}
	}
}

func (r *reporter) spread(s telemetry.Spread) {
	r.p.Fprintf(r.w, "efficiency across box: mean %.3f  p10 %.3f  p50 %.3f  p90 %.3f\n",
		s.Mean, s.P10, s.P50, s.P90)
}

func (r *reporter) runs(runs []storage.RunSummary) {
	if len(runs) == 0 {
		r.p.Fprintf(r.w, "no archived runs\n")
		return
	}
	r.p.Fprintf(r.w, "%6s  %-20s %-16s %7s %9s %6s\n", "id", "created", "helper", "eff", "helps", "full")
	for _, run := range runs {
		r.p.Fprintf(r.w, "%6d  %-20s %-16s %7.3f %9.1f %6.0f\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Label,
			run.AvgTotal, run.HelpsTotal, run.TimeToFull)
	}
}

func (r *reporter) run(run storage.Run) {
	res := run.Result
	r.p.Fprintf(r.w, "run %d  %s  %s\n", run.ID, run.Label, run.CreatedAt.Format("2006-01-02 15:04:05"))
	r.p.Fprintf(r.w, "  sleep score %d, bursts %d x %.0f, taps %s/%s\n",
		run.Params.SleepScore, run.Params.BurstCount, run.Params.BurstAmount,
		run.Params.AwakeTap, run.Params.AsleepTap)
	r.p.Fprintf(r.w, "  frequency %.0f s, max energy %.0f\n", res.FrequencySeconds, res.MaxEnergy)
	for _, ev := range res.Events {
		r.p.Fprintf(r.w, "  %5d %-6s %6.1f -> %6.1f\n", ev.Minutes, ev.Kind, ev.EnergyBefore, ev.EnergyAfter)
	}
	r.p.Fprintf(r.w, "  helps %.1f (awake %.1f, asleep full %.1f, asleep %.1f)\n",
		res.HelpCount.Total(), res.HelpCount.Awake, res.HelpCount.AsleepFull, res.HelpCount.AsleepNotFull)
}
