package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/howard-nolan/questionrouter/internal/fanout"
	"github.com/howard-nolan/questionrouter/internal/model"
)

type handler struct {
	engine *fanout.Engine
	logger *zap.Logger
}

type searchRequest struct {
	Query     model.Query      `json:"query"`
	Providers []model.Provider `json:"providers,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// search handles POST /v1/search. When the request omits providers, the
// caller's stored configuration (resolved by bearerAuth) is used instead.
// When the request names providers, they are used as given: their config
// is not merged with the caller's stored config for the same provider.
func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Query.Type.Valid() {
		writeError(w, http.StatusBadRequest, "invalid query type")
		return
	}

	providers := req.Providers
	if len(providers) == 0 {
		caller, ok := callerFromContext(r.Context())
		if !ok || len(caller.ProviderConfigs) == 0 {
			writeError(w, http.StatusBadRequest, "no providers supplied and none are on file for this caller")
			return
		}
		providers = caller.ProviderConfigs
	}

	resp, err := h.engine.Search(r.Context(), req.Query, providers)
	if err != nil {
		h.logger.Warn("search failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
