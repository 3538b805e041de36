package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/tokpat/internal/bindfile"
	"github.com/gnolang/tokpat/pattern/fragment"
)

var (
	matchPattern string
	matchJSON    bool
)

var matchCmd = &cobra.Command{
	Use:   "match --pattern P [file|-]",
	Short: "Match input against a pattern and print the bindings",
	Long: `Matches the whole input against the pattern and prints the bindings.
Reads stdin when no file is given. Example) echo 'f(1, 2)' | tokpat match -p '$f:ident($($a:expr),*)'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := fragment.Compile(matchPattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		src, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		b, err := fragment.MatchSource(p, src)
		if err != nil {
			logger.Debug("no match", zap.String("pattern", matchPattern), zap.Error(err))
			return err
		}
		tree := bindfile.Encode(b)

		out := cmd.OutOrStdout()
		if matchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tree)
		}
		data, err := yaml.Marshal(tree)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchPattern, "pattern", "p", "", "Pattern to match")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print bindings as JSON instead of YAML")
	_ = matchCmd.MarkFlagRequired("pattern")
}
