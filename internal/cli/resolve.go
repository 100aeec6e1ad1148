package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a media link and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), rootOpts, args[0], cmd.OutOrStdout())
		},
	}
}

func runResolve(ctx context.Context, opts *RootOptions, link string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	resolver, err := newResolver(ctx, cfg, log)
	if err != nil {
		return err
	}

	media, err := resolver.Resolve(ctx, link).Unwrap()
	if err != nil {
		return fmt.Errorf("resolve %s: %w", link, err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(media)
}
