package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/secretagent/internal/domain"
	"github.com/tjfontaine/secretagent/internal/literal"
)

type invokeRequest struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

type invokeResponse struct {
	Output  any    `json:"output"`
	Literal string `json:"literal"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	descs := make([]domain.Descriptor, 0, len(s.order))
	for _, name := range s.order {
		d := s.stubs[name].Descriptor()
		d.ReturnType = d.ReturnTypeName()
		descs = append(descs, d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"stubs": descs})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	st, ok := s.stubs[name]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no stub named %q", name))
		return
	}
	AddLogField(r.Context(), "stub", name)

	var req invokeRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	args := make([]any, len(req.Args))
	for i, a := range req.Args {
		args[i] = fromJSON(a)
	}
	var kw map[string]any
	if len(req.Kwargs) > 0 {
		kw = make(map[string]any, len(req.Kwargs))
		for k, v := range req.Kwargs {
			kw[k] = fromJSON(v)
		}
	}

	s.callMu.Lock()
	out, err := st.InvokeWith(r.Context(), kw, args...)
	s.callMu.Unlock()
	if err != nil {
		AddError(r.Context(), err)
		kind := domain.KindOf(err)
		writeError(w, statusFor(kind), string(kindOrInternal(kind)), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, invokeResponse{
		Output:  literal.ToJSON(out),
		Literal: literal.Format(out),
	})
}

// fromJSON turns decoded JSON numbers into int where integral, float64
// otherwise, so arguments render as 5 rather than 5.0.
func fromJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = fromJSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = fromJSON(item)
		}
		return out
	default:
		return v
	}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindConfiguration, domain.KindTypeCoercion:
		return http.StatusBadRequest
	case domain.KindService, domain.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func kindOrInternal(kind domain.ErrorKind) domain.ErrorKind {
	if kind == "" {
		return "internal"
	}
	return kind
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: msg}})
}
