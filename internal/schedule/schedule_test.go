package schedule

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScheduleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeScheduleFile(t, `
checks:
  - website_id: w1
    cron: "0 6 * * *"
  - website_id: w2
    cron: "30 */4 * * *"
    keyword: running shoes
`)

	f, err := Load(path)
	require.NoError(t, err)
	require.Len(t, f.Checks, 2)
	assert.Equal(t, Entry{WebsiteID: "w1", Cron: "0 6 * * *"}, f.Checks[0])
	assert.Equal(t, "running shoes", f.Checks[1].Keyword)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"missing website_id", "checks:\n  - cron: \"0 6 * * *\"\n"},
		{"missing cron", "checks:\n  - website_id: w1\n"},
		{"not yaml", "checks: [unclosed\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeScheduleFile(t, tc.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestRunnerRegister(t *testing.T) {
	t.Parallel()

	r := NewRunner(func(ctx context.Context, websiteID, keyword string) error { return nil })
	f := &File{Checks: []Entry{
		{WebsiteID: "w1", Cron: "0 6 * * *"},
		{WebsiteID: "w2", Cron: "@hourly"},
	}}

	require.NoError(t, r.Register(context.Background(), f))
	assert.Equal(t, 2, r.Len())
}

func TestRunnerRegisterBadExpression(t *testing.T) {
	t.Parallel()

	r := NewRunner(func(ctx context.Context, websiteID, keyword string) error { return nil })
	err := r.Register(context.Background(), &File{Checks: []Entry{
		{WebsiteID: "w1", Cron: "not a cron"},
	}})
	assert.Error(t, err)
}
