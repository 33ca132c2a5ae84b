package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framegate/framegate/internal/gate"
)

var initConfigOut string

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().StringVarP(&initConfigOut, "out", "o", "", "Write to file instead of stdout")
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Emit a commented default gate configuration",
	RunE:  runInitConfig,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	yaml := gate.DefaultConfigYAML()
	if initConfigOut == "" {
		fmt.Print(yaml)
		return nil
	}
	if _, err := os.Stat(initConfigOut); err == nil {
		return fmt.Errorf("refusing to overwrite %s", initConfigOut)
	}
	if err := os.WriteFile(initConfigOut, []byte(yaml), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", initConfigOut)
	return nil
}
