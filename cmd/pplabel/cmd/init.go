package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MeKo-Tech/pplabel/internal/config"
	"github.com/MeKo-Tech/pplabel/internal/scaffold"
	"github.com/spf13/cobra"
)

// initCmd creates the project folder skeleton.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the project folder skeleton",
	Long: `Create the canonical project layout (scripts, configs, data/det_labels,
data/rec_crops, results, docs, ...) under --root and touch README.md.
Existing directories and files are kept.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		root, _ := cmd.Flags().GetString("root")
		if err := scaffold.Create(root); err != nil {
			return err
		}
		if write, _ := cmd.Flags().GetBool("write-config"); write {
			out := filepath.Join(root, "configs", config.ConfigFileName+".yaml")
			if err := config.GenerateDefaultConfigFile(out); err != nil {
				return fmt.Errorf("write default config: %w", err)
			}
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project skeleton under %s\n", root)
		return nil
	},
}

func init() {
	initCmd.Flags().String("root", scaffold.DefaultRoot, "project root directory")
	initCmd.Flags().Bool("write-config", false, "also write configs/pplabel.yaml with default settings")
}
