package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"taxtree/internal/app"
	"taxtree/internal/types"
)

type nodeView struct {
	types.Node
	Depth    int `json:"depth"`
	Children int `json:"children"`
}

func (s *Server) view(id string) (nodeView, error) {
	node, err := s.tree.Get(id)
	if err != nil {
		return nodeView{}, err
	}
	depth, err := s.tree.Depth(id)
	if err != nil {
		return nodeView{}, err
	}
	children, err := s.tree.Children(id)
	if err != nil {
		return nodeView{}, err
	}
	return nodeView{Node: node, Depth: depth, Children: len(children)}, nil
}

func (s *Server) views(ids []string) ([]nodeView, error) {
	out := make([]nodeView, 0, len(ids))
	for _, id := range ids {
		v, err := s.view(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	v, err := s.view(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	ids, err := s.tree.Children(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := s.views(ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"children": views})
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Lineage(s.tree, app.LineageRequest{
		ID:    chi.URLParam(r, "id"),
		Ranks: splitParam(r.URL.Query().Get("ranks")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lineage": result.Nodes})
}

func (s *Server) handleLeaves(w http.ResponseWriter, r *http.Request) {
	ids, err := s.tree.Leaves(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaves": ids, "count": len(ids)})
}

func (s *Server) handleLCA(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ids := append(query["id"], nonEmpty(query.Get("a"), query.Get("b"))...)
	if len(ids) < 2 {
		jsonError(w, "lca needs two ids: a and b", http.StatusBadRequest)
		return
	}
	result, err := s.service.LCA(s.tree, app.LCARequest{IDs: ids})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lca": result.Node, "depth": result.Depth})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := s.service.Search(s.tree, app.SearchRequest{
		Name: query.Get("name"),
		Mode: types.SearchMode(query.Get("mode")),
		Rank: query.Get("rank"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	nodes := result.Nodes
	if nodes == nil {
		nodes = []types.Node{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": nodes, "count": len(nodes)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Stats(s.tree)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"root":      s.tree.Root(),
		"nodes":     result.Stats.Nodes,
		"leaves":    result.Stats.Leaves,
		"max_depth": result.Stats.MaxDepth,
		"ranks":     result.Stats.Ranks,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeNotFound:
		status = http.StatusNotFound
	case errbuilder.CodeInvalidArgument:
		status = http.StatusBadRequest
	case errbuilder.CodeFailedPrecondition:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	jsonError(w, errorMessage(err), status)
}

func errorMessage(err error) string {
	var built *errbuilder.ErrBuilder
	if errors.As(err, &built) && built.Msg != "" {
		return built.Msg
	}
	return err.Error()
}

func splitParam(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, value := range values {
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
