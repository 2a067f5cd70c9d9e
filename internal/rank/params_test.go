package rank

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestLoadParamsDefaults(t *testing.T) {
	t.Parallel()

	t.Run("empty store falls back entirely", func(t *testing.T) {
		t.Parallel()
		params := LoadParams(context.Background(), newFakeStore())
		assert.Equal(t, DefaultParams(), params)
	})

	t.Run("store failure falls back entirely", func(t *testing.T) {
		t.Parallel()
		f := newFakeStore()
		f.settingsErr = eris.New("connection refused")
		params := LoadParams(context.Background(), f)
		assert.Equal(t, DefaultParams(), params)
	})
}

func TestLoadParamsPerKeyMerge(t *testing.T) {
	t.Parallel()

	f := newFakeStore()
	f.settings[SettingMaxResults] = 500
	// cooldown and batch size left unset

	params := LoadParams(context.Background(), f)
	assert.Equal(t, 500, params.MaxResults)
	assert.Equal(t, defaultCooldownHours, params.CooldownHours)
	assert.Equal(t, defaultBatchSize, params.BatchSize)
}

func TestLoadParamsIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	f := newFakeStore()
	f.settings[SettingMaxResults] = 0
	f.settings[SettingBatchSize] = -10

	params := LoadParams(context.Background(), f)
	assert.Equal(t, defaultMaxResults, params.MaxResults)
	assert.Equal(t, defaultBatchSize, params.BatchSize)
}

func TestParamsCooldown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 168*time.Hour, DefaultParams().Cooldown())
	assert.Equal(t, 24*time.Hour, Params{CooldownHours: 24}.Cooldown())
}
