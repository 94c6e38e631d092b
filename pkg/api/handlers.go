package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/coolbeans/lawlink/pkg/graph"
	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/relation"
	"github.com/coolbeans/lawlink/pkg/store"
	"github.com/go-chi/chi/v5"
)

// handleListRuns lists stored runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.Runs(r.Context())
	if err != nil {
		jsonError(w, "failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, map[string]any{"runs": runs})
}

// handleListDocuments lists the documents of a run.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}
	documents, err := s.store.Documents(r.Context(), runID)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if documents == nil {
		documents = []store.DocumentSummary{}
	}
	writeJSON(w, map[string]any{"run_id": runID, "documents": documents})
}

// handleDocumentNodes returns a document's nodes, optionally filtered by
// the level query parameter.
func (s *Server) handleDocumentNodes(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}

	nodes, err := s.store.Nodes(r.Context(), runID, name, node.Level(r.URL.Query().Get("level")))
	if err != nil {
		jsonError(w, "failed to read nodes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	elements, err := node.MarshalElements(nodes)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"run_id": runID, "document": name, "nodes": elements})
}

// handleDocumentRelations returns a document's relation rows.
func (s *Server) handleDocumentRelations(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}

	relations, err := s.store.Relations(r.Context(), runID, name)
	if err != nil {
		jsonError(w, "failed to read relations: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if relations == nil {
		relations = []relation.Row{}
	}
	writeJSON(w, map[string]any{"run_id": runID, "document": name, "relations": relations})
}

// handleNode returns one node by the id query parameter.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonError(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	stored, err := s.store.Node(r.Context(), runID, id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read node: "+err.Error(), http.StatusInternalServerError)
		return
	}
	elements, err := node.MarshalElements(node.Collection{stored.Node})
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"run_id": runID, "document": stored.Document, "node": elements[0]})
}

// handleInbound lists the references pointing at the id query parameter.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonError(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	links, err := s.store.Inbound(r.Context(), runID, id)
	if err != nil {
		jsonError(w, "failed to read inbound links: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []store.InboundLink{}
	}
	writeJSON(w, map[string]any{"run_id": runID, "id": id, "inbound": links})
}

// handleGraph answers a referrers, targets or parts query for one node,
// over the graph of every document in the run.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	query := chi.URLParam(r, "query")

	nodes, err := s.store.RunNodes(r.Context(), runID)
	if err != nil {
		jsonError(w, "failed to read nodes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	g := graph.FromCollection(nodes)

	ids, err := g.Related(query, id)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !g.Has(id) {
		jsonError(w, "node "+id+": "+store.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"run_id": runID, "id": id, "query": query, "ids": ids})
}

// runID returns the run query parameter, or the latest run when it is
// absent. It writes the error response itself.
func (s *Server) runID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if runID := r.URL.Query().Get("run"); runID != "" {
		if _, err := s.store.Run(r.Context(), runID); err != nil {
			writeStoreError(w, err)
			return "", false
		}
		return runID, true
	}

	run, err := s.store.LatestRun(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return "", false
	}
	return run.ID, true
}

func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	value, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil || value == "" {
		jsonError(w, "invalid "+key, http.StatusBadRequest)
		return "", false
	}
	return value, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
