package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/pool"
)

func newGenerateCmd() *cobra.Command {
	var (
		output    string
		direction string
		size      int
		seed      int64
		skills    []string
		regions   []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic pool file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			g := pool.NewGenerator(seed, pool.WithSkills(skills...), pool.WithRegions(regions...))
			req, err := g.Request(model.Direction(direction), size)
			if err != nil {
				return err
			}
			if err := pool.Save(output, req); err != nil {
				return err
			}
			cmd.Printf("wrote %d %s to %s (seed %d)\n", size, direction, output, seed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "pool.yaml", "output file (.yaml, .yml or .json)")
	cmd.Flags().StringVarP(&direction, "direction", "d", string(model.DirectionCandidates), "pool side: candidates or assignments")
	cmd.Flags().IntVarP(&size, "size", "n", 100, "records in the pool")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed; defaults to the current time")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "skill vocabulary")
	cmd.Flags().StringSliceVar(&regions, "regions", nil, "region vocabulary")
	return cmd
}
