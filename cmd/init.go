package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/tokpat/internal/config"
	"github.com/gnolang/tokpat/rewrite"
)

var force bool

// initCmd: tokpat init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file and an example rule file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.FileName
		}
		if err := initConfigurationFile(path, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)

		rulesPath := filepath.Join(filepath.Dir(path), config.Default().Rules[0])
		created, err := initRulesFile(rulesPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Example rules created: %s\n", rulesPath)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, overwrite bool) error {
	if _, err := os.Stat(configurationPath); err == nil && !overwrite {
		return fmt.Errorf("%s already exists, use --force to overwrite it", configurationPath)
	}

	d, err := yaml.Marshal(config.Default())
	if err != nil {
		return err
	}

	f, err := os.Create(configurationPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}

var exampleRules = rewrite.RulesConfig{
	Rules: []rewrite.Rule{
		{
			Name:        "question-mark",
			Match:       "$x:ident.unwrap()",
			Replace:     "$x:ident?",
			Description: "Propagate errors instead of panicking",
		},
	},
}

// initRulesFile writes the example rules unless path already exists.
func initRulesFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	d, err := yaml.Marshal(exampleRules)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, d, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
