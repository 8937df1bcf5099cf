package yamlcat

import (
	"fmt"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// scenarioDoc mirrors the YAML shape of one scenario file. It uses
// mapstructure tags so the shorthand keys used by catalog authors (entry,
// to, template, tools) decode cleanly.
type scenarioDoc struct {
	ID       string    `mapstructure:"id"`
	Version  int       `mapstructure:"version"`
	Name     string    `mapstructure:"name"`
	Entry    string    `mapstructure:"entry"`
	Priority int       `mapstructure:"priority"`
	Steps    []stepDoc `mapstructure:"steps"`
}

type stepDoc struct {
	ID            string            `mapstructure:"id"`
	Transitions   []transitionDoc   `mapstructure:"transitions"`
	CanSkip       bool              `mapstructure:"can_skip"`
	Checkpoint    bool              `mapstructure:"checkpoint"`
	Terminal      bool              `mapstructure:"terminal"`
	CollectFields []string          `mapstructure:"collect_fields"`
	Tools         []string          `mapstructure:"tools"`
	Template      string            `mapstructure:"template"`
	ConfirmText   string            `mapstructure:"confirm_text"`
	Metadata      map[string]string `mapstructure:"metadata"`
}

type transitionDoc struct {
	To        string `mapstructure:"to"`
	Condition string `mapstructure:"condition"`
}

// parseScenario decodes one scenario file into its domain form. YAML is
// unmarshaled generically first, then mapstructure handles the typed decode,
// so unknown keys are tolerated instead of failing the whole catalog.
func parseScenario(data []byte) (*domain.Scenario, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var doc scenarioDoc
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid scenario structure: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("scenario is missing an id")
	}
	if doc.Entry == "" {
		return nil, fmt.Errorf("scenario %s is missing an entry step", doc.ID)
	}

	sc := &domain.Scenario{
		ID:          doc.ID,
		Version:     doc.Version,
		Name:        doc.Name,
		EntryStepID: doc.Entry,
		Priority:    doc.Priority,
	}
	for _, s := range doc.Steps {
		step := domain.ScenarioStep{
			ID:            s.ID,
			CanSkip:       s.CanSkip,
			Checkpoint:    s.Checkpoint,
			Terminal:      s.Terminal,
			CollectFields: s.CollectFields,
			ToolIDs:       s.Tools,
			TemplateRef:   s.Template,
			ConfirmText:   s.ConfirmText,
			Metadata:      s.Metadata,
		}
		for _, t := range s.Transitions {
			step.Transitions = append(step.Transitions, domain.StepTransition{
				ToStepID:  t.To,
				Condition: t.Condition,
			})
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}
