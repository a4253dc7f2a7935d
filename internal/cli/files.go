package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newUploadCommand(v *viper.Viper) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if name == "" {
				name = filepath.Base(args[0])
			}

			c, err := newClient(v)
			if err != nil {
				return err
			}
			notified, err := c.Upload(cmd.Context(), name, content)
			if err != nil {
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes)", name, len(content))
			fmt.Fprintf(cmd.OutOrStdout(), ", %d subscriber(s) notified\n", notified)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name to store the file under (default: base name of path)")
	return cmd
}

func newListCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			names, err := c.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newDownloadCommand(v *viper.Viper) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <name>",
		Short: "Download a file",
		Long:  "Download a file. Use -o - to write the content to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(v)
			if err != nil {
				return err
			}
			file, err := c.Download(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if output == "" {
				output = file.Name
			}
			if err := os.WriteFile(output, file.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Downloaded %s to %s", file.Name, output)
			fmt.Fprintf(cmd.OutOrStdout(), " (%d bytes, %s, %s)\n", file.Size, file.ContentType, file.Digest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path (default: the file name)")
	return cmd
}
