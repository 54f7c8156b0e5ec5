package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd prints the resolved configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Print every setting after defaults, the config file, PPLABEL_*
environment variables and global flags have been applied, as YAML.
The config file in use, if any, is reported in a leading comment.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		loader := GetConfigLoader()
		out, err := yaml.Marshal(loader.GetResolvedConfig())
		if err != nil {
			return fmt.Errorf("encode configuration: %w", err)
		}
		w := cmd.OutOrStdout()
		if used := loader.GetConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(w, "# config file: %s\n", used)
		}
		_, err = w.Write(out)
		return err
	},
}
