// Package httpapi exposes the vault's operations over HTTP using the
// standard library's method+pattern ServeMux routing, grounded in the
// teacher's internal/httpapi/server.go shape.
package httpapi

import (
	"net/http"

	"github.com/s4birli/MindVault/internal/vault/agents"
	"github.com/s4birli/MindVault/internal/vault/ask"
	"github.com/s4birli/MindVault/internal/vault/ingest"
	"github.com/s4birli/MindVault/internal/vault/retrieve"
	"github.com/s4birli/MindVault/internal/vault/router"
	"github.com/s4birli/MindVault/internal/vault/store"
)

// Server exposes the vault's HTTP surface.
type Server struct {
	store     *store.Store
	ingestor  *ingest.Ingestor
	retriever *retrieve.Retriever
	ask       *ask.Engine
	agents    *agents.Registry
	router    *router.Router
	env       map[string]any

	mux *http.ServeMux
}

// Deps bundles the components Server dispatches into.
type Deps struct {
	Store     *store.Store
	Ingestor  *ingest.Ingestor
	Retriever *retrieve.Retriever
	Ask       *ask.Engine
	Agents    *agents.Registry
	Router    *router.Router
	Env       map[string]any
}

// NewServer wires a Server from deps and registers all routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		store:     deps.Store,
		ingestor:  deps.Ingestor,
		retriever: deps.Retriever,
		ask:       deps.Ask,
		agents:    deps.Agents,
		router:    deps.Router,
		env:       deps.Env,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /ingest/gmail", s.handleIngestGmail)
	s.mux.HandleFunc("HEAD /ingest/gmail/exists", s.handleIngestGmailExists)
	s.mux.HandleFunc("POST /search", s.handleSearch)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("POST /agent/act", s.handleAgentAct)
	s.mux.HandleFunc("GET /items/external", s.handleItemsExternal)
}
