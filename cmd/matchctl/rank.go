package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/matchcore/internal/adapters/telemetry"
	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/domain/ranking"
	"github.com/okian/matchcore/internal/domain/scoring"
	"github.com/okian/matchcore/internal/pool"
	"github.com/okian/matchcore/pkg/logger"
)

type rankOptions struct {
	file     string
	preset   string
	topK     int
	minScore float64
	workers  int
	timeout  time.Duration
	partial  bool
	explain  bool
}

func newRankCmd() *cobra.Command {
	var opts rankOptions

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a pool file offline and print the batch as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "pool file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "weight preset; overrides the file's weights and preset")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "results to keep; 0 keeps the file's top_k, or all")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "drop results scoring below this")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "scoring goroutines; 0 uses GOMAXPROCS")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort the batch after this long; 0 disables")
	cmd.Flags().BoolVar(&opts.partial, "partial", false, "on timeout print what was scored instead of failing")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "explain the top result instead of printing the batch")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runRank(cmd *cobra.Command, opts *rankOptions) error {
	req, err := pool.Load(opts.file)
	if err != nil {
		return err
	}

	weights := scoring.WeightConfig(req.Weights)
	preset := req.Preset
	if opts.preset != "" {
		weights, preset = nil, opts.preset
	}
	cfg, err := scoring.Resolve(weights, preset, nil)
	if err != nil {
		return err
	}

	topK := req.TopK
	if opts.topK > 0 {
		topK = opts.topK
	}
	minScore := opts.minScore
	if req.MinScore != nil && !cmd.Flags().Changed("min-score") {
		minScore = *req.MinScore
	}

	policy := ranking.CancelFail
	if opts.partial {
		policy = ranking.CancelPartial
	}
	pipe := ranking.New(
		ranking.WithWorkers(opts.workers),
		ranking.WithMinScore(minScore),
		ranking.WithCancelPolicy(policy),
		ranking.WithHook(telemetry.NewLogHook(logger.Named("rank"))),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var batch *model.MatchBatch
	switch req.Direction {
	case model.DirectionAssignments:
		if req.Candidate == nil {
			return fmt.Errorf("pool file %s has no candidate", opts.file)
		}
		batch, err = pipe.RankAssignments(ctx, *req.Candidate, req.Assignments, cfg, topK)
	case model.DirectionCandidates, "":
		if req.Assignment == nil {
			return fmt.Errorf("pool file %s has no assignment", opts.file)
		}
		batch, err = pipe.RankCandidates(ctx, *req.Assignment, req.Candidates, cfg, topK)
	default:
		return fmt.Errorf("pool file %s: unknown direction %q", opts.file, req.Direction)
	}
	if err != nil {
		return err
	}

	if opts.explain {
		return explainTop(cmd, &req, batch, cfg)
	}
	return printJSON(cmd, batch)
}

// explainTop prints the explanation of the best result in batch.
func explainTop(cmd *cobra.Command, req *model.RankRequest, batch *model.MatchBatch, cfg scoring.WeightConfig) error {
	if len(batch.Results) == 0 {
		return fmt.Errorf("nothing to explain: batch has no results")
	}
	top := batch.Results[0]

	var (
		a model.Assignment
		c model.CandidateProfile
	)
	if batch.Direction == model.DirectionAssignments {
		c = *req.Candidate
		for i := range req.Assignments {
			if req.Assignments[i].ID == top.AssignmentID {
				a = req.Assignments[i]
				break
			}
		}
	} else {
		a = *req.Assignment
		for i := range req.Candidates {
			if req.Candidates[i].ID == top.CandidateID {
				c = req.Candidates[i]
				break
			}
		}
	}

	exp, err := scoring.Explain(&a, &c, cfg)
	if err != nil {
		return err
	}
	return printJSON(cmd, exp)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
