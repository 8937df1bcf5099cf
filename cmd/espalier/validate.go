package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/internal/validator"
	"github.com/espalier-dev/espalier/pkg/adapters/yamlcat"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Lint the rule and scenario catalogs",
	Long: `Checks every scenario step graph for dangling transitions, missing
entry steps, unreachable steps and unguarded self-loops, and the rule
relationship edges for self-references and unknown rule IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		catalog, err := yamlcat.Load(dir)
		if err != nil {
			return err
		}

		ctx := context.Background()
		var findings []validator.Finding

		rules, _ := catalog.Rules(ctx)
		edges, _ := catalog.Relationships(ctx)
		findings = append(findings, validator.ValidateRules(rules, edges)...)

		scenarios, _ := catalog.Scenarios(ctx)
		ids := make([]string, 0, len(scenarios))
		for id := range scenarios {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			findings = append(findings, validator.ValidateScenario(scenarios[id])...)
		}

		if len(findings) == 0 {
			fmt.Printf("Catalogs OK: %d rules, %d edges, %d scenarios\n",
				len(rules), len(edges), len(scenarios))
			return nil
		}

		for _, f := range findings {
			fmt.Fprintf(os.Stderr, "- %s\n", f)
		}
		return fmt.Errorf("found %d catalog issue(s)", len(findings))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
