package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/gigurra/statement-stats/internal/store"
)

// Store keys
const (
	KeySettings    = "settings"
	KeyGroupedData = "groupedData"

	// Individual keys written by earlier versions, read only when no
	// settings snapshot exists. Values are JSON.
	legacyKeyGroupBy              = "groupBy"
	legacyKeyCustomExcludedItems  = "customExcludedItems"
	legacyKeyExcludeLargeAmount   = "excludeLargeAmount"
	legacyKeyLargeAmountThreshold = "largeAmountThreshold"
)

// LoadSettings reads the settings snapshot. Any failure falls back to the
// defaults (field by field for legacy keys) and is only logged.
func LoadSettings(ctx context.Context, st store.Store, defaultThreshold float64, logger *slog.Logger) Settings {
	settings := DefaultSettings(defaultThreshold)

	data, err := st.Load(ctx, KeySettings)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			logger.Warn("settings snapshot unreadable, using defaults", "error", err)
			return DefaultSettings(defaultThreshold)
		}
		if settings.Version > SettingsVersion {
			logger.Warn("settings snapshot is from a newer version", "version", settings.Version)
		}
		return settings
	case errors.Is(err, store.ErrNotFound):
		return loadLegacySettings(ctx, st, settings, logger)
	default:
		logger.Warn("loading settings failed, using defaults", "error", err)
		return settings
	}
}

func loadLegacySettings(ctx context.Context, st store.Store, settings Settings, logger *slog.Logger) Settings {
	load := func(key string, dst any) {
		data, err := st.Load(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		if err == nil {
			err = json.Unmarshal(data, dst)
		}
		if err != nil {
			logger.Warn("ignoring legacy setting", "key", key, "error", err)
		}
	}

	var groupBy string
	var custom []string
	excludeLarge := settings.ExcludeLargeAmount
	threshold := settings.LargeAmountThreshold

	load(legacyKeyGroupBy, &groupBy)
	load(legacyKeyCustomExcludedItems, &custom)
	load(legacyKeyExcludeLargeAmount, &excludeLarge)
	load(legacyKeyLargeAmountThreshold, &threshold)

	if groupBy != "" {
		settings.GroupBy = groupBy
	}
	if custom != nil {
		settings.CustomExcludedItems = custom
	}
	settings.ExcludeLargeAmount = excludeLarge
	settings.LargeAmountThreshold = threshold
	return settings
}

// SaveSettings writes the settings snapshot
func SaveSettings(ctx context.Context, st store.Store, settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := st.Save(ctx, KeySettings, data); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// groupedSnapshot is the cached form of the last computed totals. YAML is
// used because it can carry NaN totals.
type groupedSnapshot struct {
	GroupBy string        `yaml:"group_by"`
	Totals  []PeriodTotal `yaml:"totals"`
}

// SaveGroupedData caches the last computed totals. The cache is advisory:
// totals are always recomputed from records and settings.
func SaveGroupedData(ctx context.Context, st store.Store, groupBy GroupBy, totals GroupedTotals) error {
	data, err := yaml.Marshal(groupedSnapshot{GroupBy: string(groupBy), Totals: totals.Entries()})
	if err != nil {
		return fmt.Errorf("marshaling grouped data: %w", err)
	}
	if err := st.Save(ctx, KeyGroupedData, data); err != nil {
		return fmt.Errorf("saving grouped data: %w", err)
	}
	return nil
}

// LoadGroupedData reads the cached totals, if any
func LoadGroupedData(ctx context.Context, st store.Store) ([]PeriodTotal, error) {
	data, err := st.Load(ctx, KeyGroupedData)
	if err != nil {
		return nil, err
	}
	var snap groupedSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing grouped data: %w", err)
	}
	return snap.Totals, nil
}
