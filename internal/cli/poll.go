package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/reddit-companion/backend/internal/inbox"
)

type PollOptions struct {
	*RootOptions
	Once bool
	JSON bool
}

func NewPollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PollOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll inboxes and send notifications",
		Long: `Poll every account with notifications enabled.

Without --once the poller keeps running on POLL_SCHEDULE until interrupted.

Example:
  companion poll --once --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.Once, "once", false, "poll a single round and exit")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print reports as JSON (with --once)")
	return cmd
}

func runPoll(ctx context.Context, opts *PollOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	if !opts.Once {
		return a.poller.Run(ctx)
	}

	reports, err := a.poller.PollAll(ctx)
	if err != nil {
		return err
	}
	return printReports(out, reports, opts.JSON)
}

func printReports(out io.Writer, reports []inbox.Report, asJSON bool) error {
	if asJSON {
		type row struct {
			inbox.Report
			Error string `json:"error,omitempty"`
		}
		rows := make([]row, len(reports))
		for i, r := range reports {
			rows[i] = row{Report: r}
			if r.Err != nil {
				rows[i].Error = r.Err.Error()
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(reports) == 0 {
		fmt.Fprintln(out, "no accounts to poll")
		return nil
	}
	for _, r := range reports {
		mode := "unread"
		if r.Full {
			mode = "full"
		}
		line := fmt.Sprintf("%s\t%s\tfetched=%d\tnotified=%d", r.Account, mode, r.Fetched, r.Notified)
		if r.Err != nil {
			line += "\terror=" + r.Err.Error()
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
