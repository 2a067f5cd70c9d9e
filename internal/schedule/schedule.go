package schedule

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Entry is one recurring check: a website, a cron expression, and optionally
// a single keyword to check instead of the website's full list.
type Entry struct {
	WebsiteID string `yaml:"website_id"`
	Cron      string `yaml:"cron"`
	Keyword   string `yaml:"keyword,omitempty"`
}

// File is the parsed schedule file.
type File struct {
	Checks []Entry `yaml:"checks"`
}

// Load reads a schedule from a YAML file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: read %s", path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "schedule: parse %s", path)
	}

	for i, e := range f.Checks {
		if e.WebsiteID == "" {
			return nil, eris.Errorf("schedule: entry %d has no website_id", i)
		}
		if e.Cron == "" {
			return nil, eris.Errorf("schedule: entry %d has no cron expression", i)
		}
	}
	return &f, nil
}

// CheckFunc runs one ranking check for a website.
type CheckFunc func(ctx context.Context, websiteID, keyword string) error

// Runner fires ranking checks on cron schedules. Checks for different
// entries may be due at the same time; the check function is expected to
// serialize its own provider traffic.
type Runner struct {
	cron  *cron.Cron
	check CheckFunc
}

// NewRunner creates a Runner around the given check function.
func NewRunner(check CheckFunc) *Runner {
	return &Runner{cron: cron.New(), check: check}
}

// Register adds every entry of the file to the cron schedule.
func (r *Runner) Register(ctx context.Context, f *File) error {
	for _, e := range f.Checks {
		entry := e
		_, err := r.cron.AddFunc(entry.Cron, func() {
			log := zap.L().With(
				zap.String("website_id", entry.WebsiteID),
				zap.String("cron", entry.Cron),
			)
			log.Info("scheduled check starting")
			start := time.Now()
			if err := r.check(ctx, entry.WebsiteID, entry.Keyword); err != nil {
				log.Error("scheduled check failed", zap.Error(err))
				return
			}
			log.Info("scheduled check complete", zap.Duration("took", time.Since(start)))
		})
		if err != nil {
			return eris.Wrapf(err, "schedule: bad cron expression %q for %s", entry.Cron, entry.WebsiteID)
		}
	}
	return nil
}

// Len reports how many jobs are registered.
func (r *Runner) Len() int { return len(r.cron.Entries()) }

// Start begins firing jobs in a background goroutine.
func (r *Runner) Start() { r.cron.Start() }

// Stop stops scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}
