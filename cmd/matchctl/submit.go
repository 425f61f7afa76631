package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/internal/pool"
)

func newSubmitCmd() *cobra.Command {
	var (
		file      string
		baseURL   string
		async     bool
		requestID string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a pool file to a running service and print the response",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := pool.Load(file)
			if err != nil {
				return err
			}
			if req.Direction == "" {
				req.Direction = model.DirectionCandidates
			}

			var (
				path string
				body any = req
			)
			switch {
			case async:
				if requestID == "" {
					requestID = uuid.NewString()
				}
				path = "/v1/jobs"
				body = struct {
					RequestID string `json:"request_id"`
					model.RankRequest
				}{RequestID: requestID, RankRequest: req}
			case req.Direction == model.DirectionAssignments:
				path = "/v1/match/assignments"
			default:
				path = "/v1/match/candidates"
			}

			payload, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}
			httpReq, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
				strings.TrimRight(baseURL, "/")+path, bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("create request: %w", err)
			}
			httpReq.Header.Set("Content-Type", "application/json")

			client := &http.Client{Timeout: timeout}
			resp, err := client.Do(httpReq)
			if err != nil {
				return fmt.Errorf("post %s: %w", path, err)
			}
			defer resp.Body.Close()

			out, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(out)))
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "pool file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().BoolVar(&async, "async", false, "queue a job instead of ranking synchronously")
	cmd.Flags().StringVar(&requestID, "request-id", "", "idempotency key for --async; generated when empty")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP request timeout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
