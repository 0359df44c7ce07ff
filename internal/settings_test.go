package internal

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/gigurra/statement-stats/internal/logging"
	"github.com/gigurra/statement-stats/internal/store"
)

// failingStore fails every call
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Load(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Save(context.Context, string, []byte) error { return errStoreDown }
func (failingStore) Close() error { return nil }

func TestLoadSettings_Defaults(t *testing.T) {
	ctx := context.Background()
	want := DefaultSettings(DefaultLargeAmountThreshold)

	for name, st := range map[string]store.Store{"empty": store.NewMemory(), "failing": failingStore{}} {
		t.Run(name, func(t *testing.T) {
			got := LoadSettings(ctx, st, DefaultLargeAmountThreshold, logging.Discard())
			cfg, errs := got.Config(DefaultLargeAmountThreshold)
			if len(errs) != 0 || !cfg.Equal(NewConfig(DefaultLargeAmountThreshold)) || got.Version != want.Version {
				t.Errorf("expected defaults, got %+v", got)
			}
		})
	}
}

func TestLoadSettings_Corrupt(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Save(ctx, KeySettings, []byte("group_by: [unterminated"))

	got := LoadSettings(ctx, st, 250, logging.Discard())
	if got.LargeAmountThreshold != 250 || got.GroupBy != string(GroupByWeek) {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSaveLoadSettings(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cfg, _ := NewConfig(DefaultLargeAmountThreshold).ToggleItem("Payment_A").WithLargeAmountThreshold(400)

	if err := SaveSettings(ctx, st, cfg.Settings([]string{"a.csv"})); err != nil {
		t.Fatal(err)
	}
	got := LoadSettings(ctx, st, DefaultLargeAmountThreshold, logging.Discard())
	back, _ := got.Config(DefaultLargeAmountThreshold)
	if !back.Equal(cfg) || !slices.Equal(got.Sources, []string{"a.csv"}) {
		t.Errorf("got %+v", got)
	}
}

func TestLoadSettings_Legacy(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Save(ctx, "groupBy", []byte(`"month"`))
	st.Save(ctx, "customExcludedItems", []byte(`["Payment_A","Payment_B"]`))
	st.Save(ctx, "excludeLargeAmount", []byte(`false`))
	st.Save(ctx, "largeAmountThreshold", []byte(`not json`))

	got := LoadSettings(ctx, st, DefaultLargeAmountThreshold, logging.Discard())
	if got.GroupBy != "month" || got.ExcludeLargeAmount {
		t.Errorf("unexpected legacy settings %+v", got)
	}
	if !slices.Equal(got.CustomExcludedItems, []string{"Payment_A", "Payment_B"}) {
		t.Errorf("unexpected custom items %v", got.CustomExcludedItems)
	}
	if got.LargeAmountThreshold != DefaultLargeAmountThreshold {
		t.Errorf("unreadable legacy threshold should fall back, got %v", got.LargeAmountThreshold)
	}
}

func TestLoadSettings_SnapshotWinsOverLegacy(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Save(ctx, "groupBy", []byte(`"month"`))
	SaveSettings(ctx, st, DefaultSettings(DefaultLargeAmountThreshold))

	if got := LoadSettings(ctx, st, DefaultLargeAmountThreshold, logging.Discard()); got.GroupBy != "week" {
		t.Errorf("expected the snapshot grouping, got %s", got.GroupBy)
	}
}

func TestGroupedData_KeepsNaN(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	totals := newGroupedTotals(map[string]float64{
		"2024-01-08-2024-01-14": math.NaN(),
		"2024-01-15-2024-01-21": 12.5,
	})
	if err := SaveGroupedData(ctx, st, GroupByWeek, totals); err != nil {
		t.Fatal(err)
	}
	got, err := LoadGroupedData(ctx, st)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Total != 12.5 || !math.IsNaN(got[1].Total) {
		t.Errorf("got %+v", got)
	}
}
