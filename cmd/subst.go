package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/tokpat/pattern/fragment"
)

var (
	substPattern  string
	substBindings string
)

var substCmd = &cobra.Command{
	Use:   "subst --pattern P --bindings FILE",
	Short: "Substitute bindings into a pattern",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, b, err := loadPatternAndBindings(substPattern, substBindings)
		if err != nil {
			return err
		}
		out, err := fragment.Substitute(p, b)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	substCmd.Flags().StringVarP(&substPattern, "pattern", "p", "", "Pattern to substitute into")
	substCmd.Flags().StringVarP(&substBindings, "bindings", "b", "", "YAML or JSON file with the bindings")
	_ = substCmd.MarkFlagRequired("pattern")
	_ = substCmd.MarkFlagRequired("bindings")
}
