// Package cli implements the fileclient command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kal997/file-interest-server/internal/client"
)

const defaultServer = "http://localhost:18812"

var (
	successColor = color.New(color.FgGreen)
	noticeColor  = color.New(color.FgCyan, color.Bold)
	errorColor   = color.New(color.FgRed)
)

// NewRootCommand builds the fileclient command tree with its own configuration
func NewRootCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "fileclient",
		Short:         "Upload, list and download files and wait for files to appear",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(v)
		},
	}

	cmd.PersistentFlags().String("server", defaultServer, "file server URL (env FILECLIENT_SERVER)")
	_ = v.BindPFlag("server", cmd.PersistentFlags().Lookup("server"))

	cmd.AddCommand(
		newUploadCommand(v),
		newListCommand(v),
		newDownloadCommand(v),
		newInterestCommand(v),
		newWatchCommand(v),
	)
	return cmd
}

// Execute runs the root command and prints a failure in red
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		errorColor.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("server", defaultServer)

	// Environment variables
	v.SetEnvPrefix("FILECLIENT")
	_ = v.BindEnv("server")

	// Config file
	v.SetConfigName("fileclient")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(os.ExpandEnv("$HOME/.fileclient"))
	return v
}

// readConfig loads the optional config file; a missing file is not an error
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func newClient(v *viper.Viper) (*client.Client, error) {
	return client.New(v.GetString("server"))
}
