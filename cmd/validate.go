package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthflow/roster/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the problem instance",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Problem.Defined() {
		fmt.Fprintln(cmd.OutOrStdout(), "config ok (no problem instance, solve would use the built-in sample)")
		return nil
	}
	p, err := cfg.Problem.Build()
	if err != nil {
		return fmt.Errorf("build problem: %w", err)
	}
	demand := 0
	for _, s := range p.Shifts {
		demand += s.Demand
	}
	fmt.Fprintf(cmd.OutOrStdout(), "config ok: %d nurses, %d days, %d slots, total demand %d\n",
		len(p.Nurses), p.Horizon, len(p.Shifts), demand)
	return nil
}
