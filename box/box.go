// Package box simulates a collection of helpers side by side.
//
// Members live as entities in an ark ECS world. RunAll snapshots every
// member, simulates them on a worker pool, then writes outcomes back to
// the Outcome component in a single thread.
package box

import (
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drowse/energy"
	"github.com/pthm-cable/drowse/sim"
	"github.com/pthm-cable/drowse/telemetry"
)

// Member is one helper's simulation input.
type Member struct {
	Label     string
	Params    energy.Parameters
	Rates     energy.Rates
	Inventory *energy.Inventory
}

// Outcome holds the last simulation of a member.
type Outcome struct {
	Result  *sim.Result
	Err     error
	Elapsed time.Duration
	Done    bool
}

// Entry is a member together with its outcome.
type Entry struct {
	Entity ecs.Entity
	Member Member
	Outcome
}

// Box owns the ECS world of members.
type Box struct {
	world *ecs.World
	opts  sim.Options

	mapper     *ecs.Map2[Member, Outcome]
	filter     *ecs.Filter2[Member, Outcome]
	outcomeMap *ecs.Map1[Outcome]

	pool *workerPool
}

// New creates an empty box. opts apply to every member's simulation.
func New(opts sim.Options) *Box {
	world := ecs.NewWorld()
	return &Box{
		world:      world,
		opts:       opts,
		mapper:     ecs.NewMap2[Member, Outcome](world),
		filter:     ecs.NewFilter2[Member, Outcome](world),
		outcomeMap: ecs.NewMap1[Outcome](world),
		pool:       newWorkerPool(),
	}
}

// Add inserts a member and returns its entity.
func (b *Box) Add(m Member) ecs.Entity {
	return b.mapper.NewEntity(&m, &Outcome{})
}

// Remove deletes a member. Unknown or removed entities are ignored.
func (b *Box) Remove(e ecs.Entity) {
	if !b.world.Alive(e) {
		return
	}
	b.world.RemoveEntity(e)
}

// Len returns the number of members.
func (b *Box) Len() int {
	n := 0
	query := b.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// RunAll simulates every member and stores the outcomes.
// It returns the number of members whose simulation failed.
func (b *Box) RunAll() int {
	// Phase A: snapshot members (single-threaded)
	b.pool.jobs = b.pool.jobs[:0]
	query := b.filter.Query()
	for query.Next() {
		m, _ := query.Get()
		b.pool.jobs = append(b.pool.jobs, job{entity: query.Entity(), member: *m})
	}

	n := len(b.pool.jobs)
	if n == 0 {
		return 0
	}

	// Phase B: simulate
	b.pool.run(b.opts)

	// Phase C: write back
	failed := 0
	for i := range b.pool.jobs {
		j := &b.pool.jobs[i]
		out := b.outcomeMap.Get(j.entity)
		if out == nil {
			continue
		}
		*out = j.outcome
		if j.outcome.Err != nil {
			failed++
		}
	}
	return failed
}

// Entries returns every member with its outcome, in entity order.
func (b *Box) Entries() []Entry {
	var entries []Entry
	query := b.filter.Query()
	for query.Next() {
		m, out := query.Get()
		entries = append(entries, Entry{Entity: query.Entity(), Member: *m, Outcome: *out})
	}
	return entries
}

// Outcome returns the outcome of one member.
func (b *Box) Outcome(e ecs.Entity) (Outcome, bool) {
	if !b.world.Alive(e) || !b.outcomeMap.HasAll(e) {
		return Outcome{}, false
	}
	return *b.outcomeMap.Get(e), true
}

// EfficiencySpread summarizes the average total efficiency over
// successfully simulated members.
func (b *Box) EfficiencySpread() telemetry.Spread {
	var values []float64
	query := b.filter.Query()
	for query.Next() {
		_, out := query.Get()
		if out.Done && out.Err == nil && out.Result != nil {
			values = append(values, out.Result.AverageEfficiency.Total)
		}
	}
	return telemetry.ComputeSpread(values)
}

// Close stops the worker pool.
func (b *Box) Close() {
	b.pool.stopWorkers()
}
