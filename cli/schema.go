package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/fitbox/config"
	"github.com/ByLCY/fitbox/fonts"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func fontsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the built-in fonts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, name := range fonts.Builtins() {
				fmt.Fprintf(w, "%s%s\n", fonts.BuiltinPrefix, name)
			}
			return nil
		},
	}
}
