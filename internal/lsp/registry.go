package lsp

import "sync"

// Registry tracks running language servers by id. Completion candidates
// carry the id of the server that produced them; the registry is how the
// engine finds its way back to that server at resolve time. A server may
// be deregistered while candidates referencing it are still alive, so
// lookups return ok=false rather than guaranteeing presence.
type Registry struct {
	mu      sync.RWMutex
	nextID  ServerID
	servers map[ServerID]*Server
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{servers: make(map[ServerID]*Server)}
}

// Register assigns the server an id and tracks it.
func (r *Registry) Register(s *Server) ServerID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s.id = r.nextID
	r.servers[s.id] = s
	return s.id
}

// ByID returns the server registered under id.
func (r *Registry) ByID(id ServerID) (*Server, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.servers[id]
	return s, ok
}

// Deregister removes the server from the registry without stopping it.
func (r *Registry) Deregister(id ServerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.servers, id)
}

// StopAll stops and removes every registered server.
func (r *Registry) StopAll() {
	r.mu.Lock()
	servers := make([]*Server, 0, len(r.servers))
	for _, s := range r.servers {
		servers = append(servers, s)
	}
	r.servers = make(map[ServerID]*Server)
	r.mu.Unlock()

	for _, s := range servers {
		s.Stop()
	}
}
