package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/cli"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/session"
)

// turnFixture is the YAML shape of a turn input file: upstream judgments by
// ID, hydrated against the catalog before the engine runs.
type turnFixture struct {
	MatchedRules []struct {
		ID    string  `yaml:"id"`
		Score float64 `yaml:"score"`
	} `yaml:"matched_rules"`
	Candidates []struct {
		ScenarioID string  `yaml:"scenario_id"`
		Score      float64 `yaml:"score"`
	} `yaml:"candidates"`
	Signals       map[string]domain.SignalKind `yaml:"signals"`
	ProfileFields map[string]any               `yaml:"profile_fields"`
}

var turnCmd = &cobra.Command{
	Use:   "turn",
	Short: "Run one decision turn from a fixture file",
	Long: `Loads the catalogs, reads a turn fixture (matched rules, scenario
candidates, signals, profile fields), runs the engine against the session's
stored snapshot, applies the decisions, and prints the turn result as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		sessionID, _ := cmd.Flags().GetString("session")
		inputPath, _ := cmd.Flags().GetString("input")
		storeKind, _ := cmd.Flags().GetString("store")
		redisAddr, _ := cmd.Flags().GetString("redis-addr")

		rt, err := cli.Build(cli.Options{
			CatalogDir: dir,
			ConfigPath: configPath,
			Store:      storeKind,
			RedisAddr:  redisAddr,
			Debug:      debug,
		})
		if err != nil {
			return err
		}

		fixture, err := readFixture(inputPath)
		if err != nil {
			return err
		}

		ctx := context.Background()
		input, err := hydrate(ctx, rt, fixture)
		if err != nil {
			return err
		}

		return rt.Manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
			snapshot, err := rt.Manager.Store().Load(ctx, sessionID)
			if errors.Is(err, domain.ErrSessionNotFound) {
				snapshot = domain.NewSession(sessionID)
			} else if err != nil {
				return err
			}
			input.Session = snapshot

			result, err := rt.Engine.DecideTurn(ctx, input)
			if err != nil {
				return err
			}

			graphs, err := rt.Catalog.Scenarios(ctx)
			if err != nil {
				return err
			}
			updated := session.Apply(snapshot, graphs, result.Lifecycle, result.Transitions, time.Now())
			if err := rt.Manager.Store().Save(ctx, updated); err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		})
	},
}

func readFixture(path string) (*turnFixture, error) {
	if path == "" {
		return &turnFixture{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read turn fixture %s: %w", path, err)
	}
	var f turnFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse turn fixture %s: %w", path, err)
	}
	return &f, nil
}

// hydrate resolves fixture rule IDs against the catalog. Unknown IDs are
// dropped with a warning, matching the engine's degrade-don't-abort posture.
func hydrate(ctx context.Context, rt *cli.Runtime, f *turnFixture) (espalier.TurnInput, error) {
	input := espalier.TurnInput{
		Signals:       f.Signals,
		ProfileFields: f.ProfileFields,
	}

	rules, err := rt.Catalog.Rules(ctx)
	if err != nil {
		return input, err
	}
	for _, m := range f.MatchedRules {
		rule, ok := rules[m.ID]
		if !ok {
			rt.Logger.Warn("fixture references unknown rule", "rule_id", m.ID)
			continue
		}
		input.MatchedRules = append(input.MatchedRules, domain.MatchedRule{
			Rule:  rule,
			Score: m.Score,
		})
	}
	for _, c := range f.Candidates {
		input.Candidates = append(input.Candidates, domain.ScenarioCandidate{
			ScenarioID: c.ScenarioID,
			Score:      c.Score,
		})
	}
	return input, nil
}

func init() {
	turnCmd.Flags().String("session", "default", "Session ID to decide on")
	turnCmd.Flags().String("input", "", "Path to the turn fixture YAML")
	turnCmd.Flags().String("store", "memory", "Session store backend (memory or redis)")
	turnCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
	rootCmd.AddCommand(turnCmd)
}
