/*
Package espalier is a decision graph engine for multi-phase conversational
agents. Given the turn's already-retrieved rule matches and scenario
candidates, it expands the rule set along typed relationship edges, decides
lifecycle actions for long-running dialogue scenarios, computes step-skip
shortcuts when downstream data is already known, and synthesizes a single
ranked contribution plan for response planning.

The engine itself performs no I/O beyond one batched catalog read per turn
and holds no cross-turn state. Session snapshots come in, decisions come out;
pkg/session applies decisions back and serializes turns per session.

	eng, err := espalier.New(ruleCatalog, scenarioCatalog,
		espalier.WithConfig(cfg),
		espalier.WithLogger(logger),
	)
	if err != nil {
		// invalid configuration, the only hard failure
	}
	result, err := eng.DecideTurn(ctx, espalier.TurnInput{
		Session:      snapshot,
		MatchedRules: matched,
		Candidates:   candidates,
	})
*/
package espalier
