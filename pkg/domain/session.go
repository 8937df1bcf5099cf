package domain

// Session is the per-conversation snapshot the engine decides over. It is
// owned by the persistence collaborator; the engine only ever sees a copy.
type Session struct {
	ID string `json:"id"`

	// Instances is keyed by scenario ID. At most one instance per scenario
	// exists in a session at a time.
	Instances map[string]*ScenarioInstance `json:"instances"`

	// Variables holds session-scoped collected values, merged with profile
	// fields into the turn's available-field view.
	Variables map[string]any `json:"variables,omitempty"`
}

// NewSession creates an empty session snapshot.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Instances: make(map[string]*ScenarioInstance),
		Variables: make(map[string]any),
	}
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := &Session{
		ID:        s.ID,
		Instances: make(map[string]*ScenarioInstance, len(s.Instances)),
		Variables: make(map[string]any, len(s.Variables)),
	}
	for k, v := range s.Instances {
		next.Instances[k] = v.Clone()
	}
	for k, v := range s.Variables {
		next.Variables[k] = v
	}
	return next
}

// ActiveCount returns the number of instances currently in StatusActive.
func (s *Session) ActiveCount() int {
	n := 0
	for _, inst := range s.Instances {
		if inst.Status == StatusActive {
			n++
		}
	}
	return n
}
