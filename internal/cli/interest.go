package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kal997/file-interest-server/internal/models"
)

func newInterestCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interest",
		Short: "Manage interest in files that are not available yet",
	}
	cmd.AddCommand(
		newInterestRegisterCommand(v),
		newInterestCancelCommand(v),
		newInterestPendingCommand(v),
	)
	return cmd
}

func newInterestRegisterCommand(v *viper.Viper) *cobra.Command {
	var duration int64

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Be notified when a file is uploaded within the next --duration seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			sub, err := c.RegisterInterest(cmd.Context(), args[0], duration)
			if err != nil {
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Registered interest in %s", sub.Filename)
			fmt.Fprintf(cmd.OutOrStdout(), " until %s (id %s)\n", sub.ExpiresAt.Local().Format(time.RFC3339), sub.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&duration, "duration", 60, "seconds the interest stays active")
	return cmd
}

func newInterestCancelCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <name>",
		Short: "Cancel every interest in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			n, err := c.CancelInterest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d interest(s) in %s\n", n, args[0])
			return nil
		},
	}
}

func newInterestPendingCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "pending <name>",
		Short: "Show how many interests in a file are still active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			n, err := c.PendingInterests(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d active interest(s) in %s\n", n, args[0])
			return nil
		},
	}
}

func newWatchCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [name...]",
		Short: "Print a line each time a watched file becomes available",
		Long:  "Print notifications for the given file names, or for every file when none is given. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			return c.Watch(cmd.Context(), args, func(event models.NotificationEvent) {
				noticeColor.Fprintf(cmd.OutOrStdout(), "%s is available", event.Filename)
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)\n", event.NotifiedAt.Local().Format(time.RFC3339))
			})
		},
	}
}
