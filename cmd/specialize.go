package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/tokpat/pattern/fragment"
)

var (
	specializePattern  string
	specializeBindings string
)

var specializeCmd = &cobra.Command{
	Use:   "specialize --pattern P --bindings FILE",
	Short: "Fix some parameters of a pattern and print the narrower pattern",
	Long: `Replaces the parameters bound in the bindings file with their values.
Parameters left unbound stay in the printed pattern.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, b, err := loadPatternAndBindings(specializePattern, specializeBindings)
		if err != nil {
			return err
		}
		sp, err := fragment.Specialize(p, b)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), sp.String())
		return err
	},
}

func init() {
	specializeCmd.Flags().StringVarP(&specializePattern, "pattern", "p", "", "Pattern to specialize")
	specializeCmd.Flags().StringVarP(&specializeBindings, "bindings", "b", "", "YAML or JSON file with the bindings")
	_ = specializeCmd.MarkFlagRequired("pattern")
	_ = specializeCmd.MarkFlagRequired("bindings")
}
