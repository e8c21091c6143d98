package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/enrich"
	"github.com/sells-group/lead-cli/internal/harvest"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/store"
)

const runIDHeader = "X-Run-ID"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	var req model.HarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := s.track(r.Context(), model.RunKindHarvest, harvest.PairCount(req))
	if id := t.runID(); id != "" {
		w.Header().Set(runIDHeader, id)
	}
	out := newNDJSON(w)
	out.send(model.LogChunk("Rozpoczynam wyszukiwanie ręczne..."))
	s.streamHarvest(r, out, t, req)
}

type smartRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleSmartHarvest(w http.ResponseWriter, r *http.Request) {
	var req smartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	out := newNDJSON(w)
	out.send(model.LogChunk("Analizuję zlecenie..."))

	st := s.deps.Strategist.Generate(r.Context(), req.Prompt)
	out.send(model.Chunk{Type: model.ChunkStrategy, Data: st})
	out.send(model.LogChunk("Szukam w: " + strings.Join(st.TargetCities, ", ")))

	hreq := st.HarvestRequest()
	t := s.track(r.Context(), model.RunKindHarvest, harvest.PairCount(hreq))
	s.streamHarvest(r, out, t, hreq)
}

func (s *Server) streamHarvest(r *http.Request, out *ndjson, t *tracker, req model.HarvestRequest) {
	completed := 0
	for c := range s.deps.Harvester.Stream(r.Context(), req) {
		if c.Type != model.ChunkDone {
			completed++
			t.progress(completed)
		}
		out.send(c)
	}
	t.finish(r.Context())
}

type enrichRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	urls := enrich.Dedup(req.URLs)
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "urls is required")
		return
	}

	t := s.track(r.Context(), model.RunKindEnrich, len(urls))
	if id := t.runID(); id != "" {
		w.Header().Set(runIDHeader, id)
	}

	if stream, err := strconv.ParseBool(r.URL.Query().Get("stream")); err == nil && !stream {
		results := s.deps.Enricher.Enrich(r.Context(), urls)
		t.finish(r.Context())
		writeJSON(w, http.StatusOK, results)
		return
	}

	out := newNDJSON(w)
	for ev := range s.deps.Enricher.Stream(r.Context(), urls) {
		t.progress(ev.Completed)
		out.send(model.DataChunk(model.ChunkEnrichResult, ev.Result, ev.Progress()))
	}
	out.send(model.DoneChunk())
	t.finish(r.Context())
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Kind:   model.RunKind(q.Get("kind")),
		Status: model.RunStatus(q.Get("status")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	runs, err := s.deps.Store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

type runResponse struct {
	model.Run
	Progress int `json:"progress"`
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.deps.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Run: *run, Progress: run.Progress()})
}
