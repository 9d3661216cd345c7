package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/errs"
)

var purgeTokensCmd = &cobra.Command{
	Use:   "purge-tokens",
	Short: "Remove expired tokens from the blacklist",
	RunE: withApp(func(cmd *cobra.Command, svcs services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		purged, err := svcs.Auth.Authenticator().PurgeExpiredTokens(ctx)
		if err != nil {
			logging.Error(ctx, "purge expired tokens failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "purge expired tokens")
		}

		logging.Info(ctx, "purge-tokens finished", slog.Int64("purged", purged))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired tokens\n", purged); err != nil {
			return errs.Wrap(err, "write purge-tokens output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(purgeTokensCmd)
}
