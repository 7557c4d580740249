package energy

import (
	"math"
	"sort"

	"github.com/pthm-cable/drowse/inventory"
	"github.com/pthm-cable/drowse/simerr"
)

// Inventory describes what the helper carries; nil disables snacking.
type Inventory struct {
	CarryCapacity int                    `yaml:"carry_capacity" json:"carryCapacity"`
	Distribution  inventory.Distribution `yaml:"distribution" json:"distribution"`
}

// Span is the half-open minute range [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Timeline is the built energy trajectory plus what the segmenter needs to
// read energy and efficiency at any minute.
type Timeline struct {
	Events []Event
	// States[i] is the state after Events[i].
	States []State

	CycleMinutes int
	// SleepStart equals CycleMinutes when the helper never sleeps.
	SleepStart int
	PeriodEnd  int
	// SnackMinute is the start of the first snack span, -1 when the
	// inventory never fills while asleep.
	SnackMinute int
	// Snacks are the spans the helper spends full and untended. A midpoint
	// tap closes the open span early.
	Snacks []Span

	MaxEnergy               float64
	FrequencySeconds        float64
	SkillTriggerProbability float64
	AlwaysFull              bool
	Curve                   Curve

	// FillCDF is the inventory fill distribution, nil without an inventory.
	FillCDF           []float64
	ExpectedFillHelps float64

	decayInterval int
	decayAmount   float64
}

// EnergyAt returns the energy during the given minute.
func (tl *Timeline) EnergyAt(minute int) float64 {
	if tl.AlwaysFull {
		return tl.MaxEnergy
	}
	for i := len(tl.Events) - 1; i >= 0; i-- {
		ev := tl.Events[i]
		if ev.Minutes > minute || !ev.Kind.anchors() {
			continue
		}
		ticks := (minute - ev.Minutes) / tl.decayInterval
		return math.Max(0, ev.EnergyAfter-float64(ticks)*tl.decayAmount)
	}
	return 0
}

// EfficiencyAt returns the energy-driven efficiency during the given minute,
// ignoring snacking.
func (tl *Timeline) EfficiencyAt(minute int) float64 {
	return tl.Curve.Efficiency(tl.EnergyAt(minute))
}

// NextEnergyChange returns the first minute after the given one at which the
// decay schedule lowers energy, or CycleMinutes if it never does.
func (tl *Timeline) NextEnergyChange(minute int) int {
	if tl.AlwaysFull {
		return tl.CycleMinutes
	}
	for i := len(tl.Events) - 1; i >= 0; i-- {
		ev := tl.Events[i]
		if ev.Minutes > minute || !ev.Kind.anchors() {
			continue
		}
		elapsed := minute - ev.Minutes
		return ev.Minutes + (elapsed/tl.decayInterval+1)*tl.decayInterval
	}
	return tl.CycleMinutes
}

// Awake reports whether the helper is awake during the given minute.
func (tl *Timeline) Awake(minute int) bool { return minute < tl.SleepStart }

// Snacking reports whether the helper is full and snacking during the
// given minute.
func (tl *Timeline) Snacking(minute int) bool {
	for _, s := range tl.Snacks {
		if minute >= s.Start && minute < s.End {
			return true
		}
	}
	return false
}

// NextSnackChange returns the first minute after the given one at which a
// snack span starts or ends, or CycleMinutes if none does.
func (tl *Timeline) NextSnackChange(minute int) int {
	for _, s := range tl.Snacks {
		if s.Start > minute {
			return s.Start
		}
		if s.End > minute {
			return s.End
		}
	}
	return tl.CycleMinutes
}

// FillMinute returns the minute at which helps accumulated from origin reach
// need, using the energy-driven efficiency. ok is false if that never
// happens within the cycle.
func (tl *Timeline) FillMinute(origin int, need float64) (minute int, ok bool) {
	perMinute := 60 / tl.FrequencySeconds
	var helps float64
	for m := origin; m < tl.CycleMinutes; m++ {
		step := perMinute * tl.EfficiencyAt(m)
		if helps+step >= need {
			return int(math.Ceil(float64(m) + (need-helps)/step)), true
		}
		helps += step
	}
	return 0, false
}

type scheduled struct {
	minute int
	kind   EventKind
	cook   int
	// tap is the asleep checkpoint. It collects the inventory without
	// emitting an event.
	tap bool
}

func (s scheduled) priority() int {
	if s.tap {
		return EventSnack.priority()
	}
	return s.kind.priority()
}

type builder struct {
	tl       *Timeline
	params   Parameters
	balance  Balance
	recovery float64
	bursts   []int
	lastCook int

	queue   []scheduled
	state   State
	drained bool
}

// Build runs the energy state machine over one cycle.
func Build(params Parameters, rates Rates, balance Balance, inv *Inventory) (*Timeline, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if err := balance.Validate(); err != nil {
		return nil, err
	}
	if params.Period == PeriodUntilFull && inv == nil {
		return nil, simerr.InvalidParameter("period", "until-full period needs an inventory")
	}

	cycle := balance.CycleMinutes
	tl := &Timeline{
		CycleMinutes:            cycle,
		SleepStart:              cycle - balance.SleepMinutes(params.SleepScore),
		SnackMinute:             -1,
		MaxEnergy:               100 * rates.MaxEnergyFactor,
		FrequencySeconds:        balance.Frequency(rates.BaseFrequencySeconds, params.HelpingBonus, params.GoodCampTicket),
		SkillTriggerProbability: rates.SkillTriggerProbability,
		AlwaysFull:              params.AlwaysFull,
		Curve:                   rates.Curve,
		decayInterval:           balance.DecayIntervalMinutes,
		decayAmount:             balance.DecayAmount,
	}
	if inv != nil {
		fill, err := inventory.ComputeFill(inv.Distribution, inv.CarryCapacity, params.GoodCampTicket)
		if err != nil {
			return nil, err
		}
		tl.FillCDF = fill.CDF
		tl.ExpectedFillHelps = fill.ExpectedHelps
	}

	b := &builder{
		tl:       tl,
		params:   params,
		balance:  balance,
		recovery: float64(params.SleepScore) * rates.RecoveryFactor * (1 + balance.RecoveryBonusStep*float64(params.RecoveryBonus)),
	}
	b.schedule()
	b.run()
	b.finish()
	return tl, nil
}

// schedule queues the fixed checkpoints: awake cooks, bedtime, closing wake.
// Cook minutes are increasing, so the awake cooks are a prefix and share
// their index with bursts.
func (b *builder) schedule() {
	for i, m := range b.balance.CookMinutes {
		if m < b.tl.SleepStart {
			b.queue = append(b.queue, scheduled{minute: m, kind: EventCook, cook: i})
		}
	}
	cooks := len(b.queue)
	if cooks > 0 {
		b.bursts = make([]int, cooks)
		for i := 0; i < b.params.BurstCount; i++ {
			b.bursts[i*cooks/b.params.BurstCount]++
		}
	}
	if b.tl.SleepStart < b.tl.CycleMinutes {
		b.queue = append(b.queue, scheduled{minute: b.tl.SleepStart, kind: EventSleep})
	}
	b.queue = append(b.queue, scheduled{minute: b.tl.CycleMinutes, kind: EventWake})
	b.sortQueue()
}

func (b *builder) sortQueue() {
	sort.SliceStable(b.queue, func(i, j int) bool {
		if b.queue[i].minute != b.queue[j].minute {
			return b.queue[i].minute < b.queue[j].minute
		}
		return b.queue[i].priority() < b.queue[j].priority()
	})
}

// run always advances to the earliest candidate: the next scheduled
// checkpoint or the minute energy runs out.
//
// Event minutes are strictly increasing, so an empty that lands on the same
// minute as a scheduled event is not emitted. That event observes the
// depletion instead: it carries EnergyBefore 0, and a sleep at zero energy
// goes straight to recovering.
func (b *builder) run() {
	wake := b.clip(b.recovery)
	if len(b.bursts) == 0 {
		wake = b.clip(wake + float64(b.params.BurstCount)*b.params.BurstAmount)
	}
	if b.tl.AlwaysFull {
		wake = b.tl.MaxEnergy
	}
	b.emit(0, EventWake, 0, wake)

	for len(b.queue) > 0 {
		next := b.queue[0]
		if minute, ok := b.emptyCandidate(); ok {
			last := b.tl.Events[len(b.tl.Events)-1].Minutes
			switch {
			case minute <= last:
				b.drained = true
			case minute < next.minute:
				b.emit(minute, EventEmpty, 0, 0)
				b.drained = true
				continue
			}
		}
		b.queue = b.queue[1:]
		b.apply(next)
	}
}

func (b *builder) emptyCandidate() (int, bool) {
	if b.tl.AlwaysFull || b.drained {
		return 0, false
	}
	anchor := b.lastAnchor()
	if anchor.EnergyAfter <= 0 {
		return 0, false
	}
	ticks := int(math.Ceil(anchor.EnergyAfter / b.balance.DecayAmount))
	return anchor.Minutes + ticks*b.balance.DecayIntervalMinutes, true
}

func (b *builder) lastAnchor() Event {
	for i := len(b.tl.Events) - 1; i >= 0; i-- {
		if b.tl.Events[i].Kind.anchors() {
			return b.tl.Events[i]
		}
	}
	return Event{}
}

func (b *builder) apply(s scheduled) {
	if s.tap {
		b.collect(s.minute)
		return
	}
	before := b.tl.EnergyAt(s.minute)
	after := before
	switch s.kind {
	case EventCook:
		burst := float64(b.bursts[s.cook]) * b.params.BurstAmount
		after = b.clip(before + b.balance.cookRecovery(before) + burst)
		b.lastCook = s.minute
	case EventWake:
		after = b.clip(before + b.recovery)
	}
	if b.tl.AlwaysFull {
		before, after = b.tl.MaxEnergy, b.tl.MaxEnergy
	}
	b.emit(s.minute, s.kind, before, after)
	switch s.kind {
	case EventSleep:
		b.scheduleSnack()
	case EventSnack:
		if b.tl.SnackMinute < 0 {
			b.tl.SnackMinute = s.minute
		}
		b.tl.Snacks = append(b.tl.Snacks, Span{Start: s.minute, End: b.tl.CycleMinutes})
	}
}

func (b *builder) emit(minute int, kind EventKind, before, after float64) {
	if kind.anchors() {
		b.drained = false
	}
	b.state = next(b.state, kind, after)
	b.tl.Events = append(b.tl.Events, Event{
		Minutes:      minute,
		Kind:         kind,
		EnergyBefore: before,
		EnergyAfter:  after,
	})
	b.tl.States = append(b.tl.States, b.state)
}

// scheduleSnack runs at bedtime. The inventory keeps filling from the last
// time the player emptied it: bedtime, the last cook, or never. With
// checkpoint taps the sleep midpoint empties it again.
func (b *builder) scheduleSnack() {
	if b.tl.FillCDF == nil || b.params.AsleepTap == TapAlways {
		return
	}
	sleepStart := b.tl.SleepStart
	origin := 0
	switch b.params.AwakeTap {
	case TapAlways:
		origin = sleepStart
	case TapCheckpoints:
		origin = b.lastCook
	}
	until := b.tl.CycleMinutes
	if b.params.AsleepTap == TapCheckpoints {
		until = sleepStart + (b.tl.CycleMinutes-sleepStart)/2
		b.queue = append(b.queue, scheduled{minute: until, tap: true})
	}
	b.queueSnack(origin, until)
}

// queueSnack queues the minute the inventory filled from origin is expected
// to be full, if that happens asleep and before until.
func (b *builder) queueSnack(origin, until int) {
	minute, ok := b.tl.FillMinute(origin, b.tl.ExpectedFillHelps)
	if ok {
		if minute <= b.tl.SleepStart {
			minute = b.tl.SleepStart + 1
		}
		if minute < until {
			b.queue = append(b.queue, scheduled{minute: minute, kind: EventSnack})
		}
	}
	b.sortQueue()
}

// collect empties the inventory at the midpoint tap. An open snack span ends
// and filling starts over.
func (b *builder) collect(minute int) {
	if n := len(b.tl.Snacks); n > 0 && b.tl.Snacks[n-1].End > minute {
		b.tl.Snacks[n-1].End = minute
	}
	b.state = collected(b.state, b.tl.EnergyAt(minute))
	b.queueSnack(minute, b.tl.CycleMinutes)
}

// finish resolves the reporting window and flags events.
func (b *builder) finish() {
	tl := b.tl
	tl.PeriodEnd = tl.CycleMinutes
	if b.params.Period == PeriodUntilFull {
		if minute, ok := tl.FillMinute(0, tl.ExpectedFillHelps); ok && minute < tl.CycleMinutes {
			tl.PeriodEnd = minute
		}
	} else {
		tl.PeriodEnd = min(int(math.Round(float64(b.params.Period)*60)), tl.CycleMinutes)
	}
	for i := range tl.Events {
		tl.Events[i].IsInPeriod = tl.Events[i].Minutes <= tl.PeriodEnd
		tl.Events[i].IsSnacking = tl.States[i] == StateAsleepSnacking
	}
}

func (b *builder) clip(e float64) float64 {
	return math.Min(math.Max(e, 0), b.tl.MaxEnergy)
}
