package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwong2529/humor-study/internal/app/apiapp"
	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/infra/httpclient"
	"github.com/jwong2529/humor-study/internal/replay"
	"github.com/jwong2529/humor-study/internal/swipe"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
)

func newReplayCommand(ctx *commandContext) *cobra.Command {
	var (
		apiFlag   string
		tokenFlag string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "replay <trace.yaml>",
		Short: "Replay a gesture trace against the live feed and submit the votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			token := strings.TrimSpace(tokenFlag)
			if token == "" {
				token = strings.TrimSpace(os.Getenv("HUMOR_ACCESS_TOKEN"))
			}
			if token == "" {
				return fmt.Errorf("an access token is required (--token or HUMOR_ACCESS_TOKEN)")
			}

			trace, err := replay.LoadTrace(args[0])
			if err != nil {
				return err
			}

			client := httpclient.NewAPIClient(apiFlag, token, timeout)
			items, err := client.Feed(cmd.Context())
			if err != nil {
				return err
			}

			voter := swipe.VoterFunc(func(ctx context.Context, itemID string, value enums.VoteValue) error {
				var gesture *dto.VoteGesture
				if outcome, ok := swipe.OutcomeFromContext(ctx); ok {
					gesture = &dto.VoteGesture{ReleaseVX: outcome.ReleaseVX, OffsetX: outcome.OffsetX}
				}
				_, err := client.SubmitVote(ctx, itemID, int(value), gesture)
				return err
			})

			report, err := replay.NewRunner(voter, apiapp.SwipeConfig(cfg.Swipe), ctx.cliLogger()).
				Run(cmd.Context(), items, trace)
			printReport(cmd, report)
			return err
		},
	}

	cmd.Flags().StringVar(&apiFlag, "api", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&tokenFlag, "token", "", "Access token (default: $HUMOR_ACCESS_TOKEN)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "HTTP timeout per request")
	return cmd
}

func printReport(cmd *cobra.Command, report replay.Report) {
	out := cmd.OutOrStdout()
	for _, g := range report.Gestures {
		switch {
		case g.Err != nil:
			fmt.Fprintf(out, "#%d %-36s error: %v\n", g.Index, g.ItemID, g.Err)
		case g.Outcome.Committed():
			fmt.Fprintf(out, "#%d %-36s %s (vx=%.3f)\n", g.Index, g.ItemID, g.Outcome.Decision, g.Outcome.ReleaseVX)
		default:
			fmt.Fprintf(out, "#%d %-36s cancel (vx=%.3f)\n", g.Index, g.ItemID, g.Outcome.ReleaseVX)
		}
	}

	failed := 0
	for _, v := range report.Votes {
		if v.Err != nil {
			failed++
			fmt.Fprintf(out, "vote %s %d failed: %v\n", v.ItemID, v.Value, v.Err)
		}
	}
	fmt.Fprintf(out, "Committed %d, votes sent %d, failed %d, frames %d, exhausted %t\n",
		report.Committed(), len(report.Votes), failed, report.Frames, report.Exhausted)
}
