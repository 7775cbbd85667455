package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/lineage"
	"github.com/ionspid/taxassign/internal/model"
	"github.com/ionspid/taxassign/internal/pipeline"
	"github.com/ionspid/taxassign/internal/result"
)

// assignRequest carries hits plus optional parameter overrides. Inline
// lineages take precedence over the server's configured source.
type assignRequest struct {
	Method     string              `json:"method"`
	Tool       string              `json:"tool"`
	Thresholds *thresholdOverrides `json:"thresholds"`
	Workers    int                 `json:"workers"`
	Hits       []model.HitRecord   `json:"hits"`
	Lineages   map[string]string   `json:"lineages"`
}

// thresholdOverrides uses pointers so an absent field keeps the
// configured default instead of collapsing to zero.
type thresholdOverrides struct {
	MinIdentity       *float64 `json:"min_identity"`
	MinCoverage       *float64 `json:"min_coverage"`
	MaxEValue         *float64 `json:"max_evalue"`
	MinBitScore       *float64 `json:"min_bit_score"`
	TopHits           *int     `json:"top_hits"`
	ConsensusFraction *float64 `json:"consensus_fraction"`
	MinWeightShare    *float64 `json:"min_weight_share"`
}

// apply merges the fields present in the request over t.
func (o *thresholdOverrides) apply(t *model.Thresholds) {
	if o.MinIdentity != nil {
		t.MinIdentity = *o.MinIdentity
	}
	if o.MinCoverage != nil {
		t.MinCoverage = *o.MinCoverage
	}
	if o.MaxEValue != nil {
		t.MaxEValue = *o.MaxEValue
	}
	if o.MinBitScore != nil {
		t.MinBitScore = *o.MinBitScore
	}
	if o.TopHits != nil {
		t.TopHits = *o.TopHits
	}
	if o.ConsensusFraction != nil {
		t.ConsensusFraction = *o.ConsensusFraction
	}
	if o.MinWeightShare != nil {
		t.MinWeightShare = *o.MinWeightShare
	}
}

type assignResponse struct {
	Result  *model.ResultSet `json:"result"`
	Summary result.Summary   `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"methods": model.Methods()})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Hits) == 0 {
		writeError(w, http.StatusBadRequest, "hits is required")
		return
	}
	if len(req.Hits) > s.cfg.Server.MaxHits {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("too many hits: %d exceeds limit %d", len(req.Hits), s.cfg.Server.MaxHits))
		return
	}

	methodName := req.Method
	if methodName == "" {
		methodName = s.cfg.Assign.Method
	}
	method, err := model.ParseMethod(methodName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	thresholds := s.cfg.Assign.Thresholds()
	if req.Thresholds != nil {
		req.Thresholds.apply(&thresholds)
	}
	tool := req.Tool
	if tool == "" {
		tool = s.cfg.Assign.Tool
	}
	workers := req.Workers
	if workers <= 0 {
		workers = s.cfg.Assign.Workers
	}

	src := s.src
	if len(req.Lineages) > 0 {
		src = lineage.NewMapSource(req.Lineages)
	}

	out, err := pipeline.Run(r.Context(), req.Hits, src, pipeline.Params{
		Method:     method,
		Tool:       tool,
		Thresholds: thresholds,
		Workers:    workers,
	})
	if err != nil {
		switch {
		case model.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case r.Context().Err() != nil:
			// Client went away; nothing useful to write.
		default:
			zap.L().Error("server: assign failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "assignment failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, assignResponse{Result: out.Set, Summary: out.Summary})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
