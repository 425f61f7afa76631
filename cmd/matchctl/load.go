package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/loadtest"
)

func newLoadCmd() *cobra.Command {
	cfg := loadtest.DefaultConfig()
	var direction string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit generated jobs to a running service and verify the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Direction = model.Direction(direction)
			stats, err := loadtest.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cmd.Printf("submitted %d: accepted %d, duplicate %d, rejected %d\n",
				stats.Submitted, stats.Accepted, stats.Duplicates, stats.Rejected)
			cmd.Printf("completed: succeeded %d, failed %d, inconsistent %d in %s (%.1f jobs/s)\n",
				stats.Succeeded, stats.Failed, stats.Inconsistent, stats.Duration, stats.JobsPerSecond())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVarP(&cfg.Jobs, "jobs", "j", cfg.Jobs, "jobs to submit")
	f.IntVarP(&cfg.PoolSize, "size", "n", cfg.PoolSize, "records per pool")
	f.StringVarP(&direction, "direction", "d", string(cfg.Direction), "pool side: candidates or assignments")
	f.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent submitters")
	f.Float64Var(&cfg.RPS, "rps", cfg.RPS, "submission rate; 0 is unlimited")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed")
	f.IntVar(&cfg.DuplicateEvery, "duplicate-every", cfg.DuplicateEvery, "resubmit every Nth request id; 0 disables")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "job status poll interval")
	f.DurationVar(&cfg.Deadline, "deadline", cfg.Deadline, "give up waiting for jobs after this long")
	return cmd
}
