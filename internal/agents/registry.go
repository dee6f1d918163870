package agents

// Registry maps agent ids to their ledger cores. Collaborators that hold
// references by id only (the loan provider) resolve borrowers through it
// instead of keeping agent pointers of their own.
type Registry struct {
	byID map[AgentID]*Agent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[AgentID]*Agent)}
}

// Register records an agent's ledger core under its id. Re-registering the
// same id replaces the previous entry.
func (r *Registry) Register(a *Agent) {
	if a == nil {
		return
	}
	r.byID[a.ID] = a
}

// Resolve returns the ledger core for an id, or false if unknown.
func (r *Registry) Resolve(id AgentID) (*Agent, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Len returns the number of registered agents.
func (r *Registry) Len() int { return len(r.byID) }
