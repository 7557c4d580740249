package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pthm-cable/drowse/energy"
	"github.com/pthm-cable/drowse/inventory"
	"github.com/pthm-cable/drowse/sim"
	"github.com/pthm-cable/drowse/storage/migrations"
)

func testRates() energy.Rates {
	return energy.Rates{
		BaseFrequencySeconds:    3000,
		RecoveryFactor:          1,
		MaxEnergyFactor:         1,
		SkillTriggerProbability: 0.05,
		Curve:                   energy.DefaultCurve(),
	}
}

func testRun(t *testing.T, label string, inv *energy.Inventory) Run {
	t.Helper()
	params := energy.DefaultParameters()
	params.AsleepTap = energy.TapCheckpoints
	res, err := sim.Simulate(params, testRates(), inv, sim.Options{})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return Run{Label: label, Params: params, Rates: testRates(), Inventory: inv, Result: res}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveGetRunRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	inv := &energy.Inventory{CarryCapacity: 12, Distribution: inventory.Distribution{1: 0.7, 2: 0.3}}
	input := testRun(t, "bulbasaur", inv)
	input.CreatedAt = time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)

	id, err := store.SaveRun(context.Background(), input)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, err := store.GetRun(context.Background(), id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.ID != id || got.Label != "bulbasaur" {
		t.Fatalf("unexpected identity: %d %q", got.ID, got.Label)
	}
	if !got.CreatedAt.Equal(input.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, input.CreatedAt)
	}
	if !reflect.DeepEqual(got.Params, input.Params) {
		t.Fatalf("params = %+v, want %+v", got.Params, input.Params)
	}
	if !reflect.DeepEqual(got.Rates, input.Rates) {
		t.Fatalf("rates = %+v, want %+v", got.Rates, input.Rates)
	}
	if !reflect.DeepEqual(got.Inventory, input.Inventory) {
		t.Fatalf("inventory = %+v, want %+v", got.Inventory, input.Inventory)
	}
	if !reflect.DeepEqual(got.Result, input.Result) {
		t.Fatalf("result did not round trip")
	}
}

func TestSaveRunWithoutInventory(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	id, err := store.SaveRun(context.Background(), testRun(t, "pikachu", nil))
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	got, err := store.GetRun(context.Background(), id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Inventory != nil {
		t.Fatalf("expected nil inventory, got %+v", got.Inventory)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to default to now")
	}
}

func TestSaveRunValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	run := testRun(t, "", nil)
	if _, err := store.SaveRun(context.Background(), run); err == nil {
		t.Fatal("expected label error")
	}
	run.Label = "x"
	run.Result = nil
	if _, err := store.SaveRun(context.Background(), run); err == nil {
		t.Fatal("expected result error")
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetRun(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)
	for i, label := range []string{"a", "b", "a"} {
		run := testRun(t, label, nil)
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.SaveRun(context.Background(), run); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	all, err := store.ListRuns(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Fatal("expected newest first")
	}
	if all[0].AvgTotal <= 0 || all[0].HelpsTotal <= 0 {
		t.Fatalf("expected summary columns, got %+v", all[0])
	}

	onlyA, err := store.ListRuns(context.Background(), "a", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(onlyA) != 2 {
		t.Fatalf("len = %d, want 2", len(onlyA))
	}

	limited, err := store.ListRuns(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("len = %d, want 1", len(limited))
	}

	if _, err := store.ListRuns(context.Background(), "", 0); err == nil {
		t.Fatal("expected limit error")
	}
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.SaveRun(context.Background(), Run{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := store.GetRun(context.Background(), 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListRuns(ctx, "", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.db")
	first, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := first.SaveRun(context.Background(), testRun(t, "kept", nil)); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	second, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer second.Close()

	var applied int
	if err := second.sqlDB.QueryRow("SELECT COUNT(*) FROM " + migrationTable).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if applied != len(entries) {
		t.Fatalf("applied migrations = %d, want %d", applied, len(entries))
	}
	runs, err := second.ListRuns(context.Background(), "kept", 5)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected kept run after reopen, got %v %v", runs, err)
	}
}

func TestExtractUpMigration(t *testing.T) {
	t.Parallel()

	got := extractUpMigration("-- +migrate Up\nCREATE TABLE x (a INT);\n-- +migrate Down\nDROP TABLE x;\n")
	if got != "\nCREATE TABLE x (a INT);\n" {
		t.Fatalf("up section = %q", got)
	}
	if got := extractUpMigration("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("plain content = %q", got)
	}
}

func TestApplyMigrationsSkipsNonSQL(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	fsys := fstest.MapFS{
		"0002_extra.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (id INTEGER);\n")},
		"README.md":      {Data: []byte("not a migration")},
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := applyMigrations(ctx, store.sqlDB, fsys); err != nil {
			t.Fatalf("apply migrations pass %d: %v", i, err)
		}
	}
	var name string
	if err := store.sqlDB.QueryRow("SELECT name FROM "+migrationTable+" WHERE name = ?", "0002_extra.sql").Scan(&name); err != nil {
		t.Fatalf("expected recorded migration: %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
