package nethttp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-mailhooks/core"
	"github.com/gorilla/mux"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req core.InboundRequest) (core.InboundResult, error)
}

// Handler serves one provider surface.
type Handler struct {
	Dispatcher Dispatcher
	ProviderID string
	Surface    string
	Decoder    Decoder
}

type response struct {
	Accepted  bool   `json:"accepted"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serve(w, r, h.Dispatcher, h.Decoder, h.ProviderID, h.Surface)
}

// NewRouter routes POST {prefix}/{provider}/{surface} to dispatcher.
func NewRouter(dispatcher Dispatcher, prefix string, decoder Decoder) *mux.Router {
	router := mux.NewRouter()
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "/" {
		prefix = ""
	}
	router.HandleFunc(prefix+"/{provider}/{surface}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		serve(w, r, dispatcher, decoder, vars["provider"], vars["surface"])
	}).Methods(http.MethodPost)
	return router
}

func serve(w http.ResponseWriter, r *http.Request, dispatcher Dispatcher, decoder Decoder, providerID string, surface string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, response{Error: "method not allowed"})
		return
	}
	if dispatcher == nil {
		err := core.Internal("nethttp: dispatcher is required", nil)
		writeJSON(w, core.HTTPStatus(err), response{Error: err.Error(), Code: core.TextCode(err)})
		return
	}

	req, err := decoder.Decode(r, providerID, surface)
	if err != nil {
		writeJSON(w, core.HTTPStatus(err), response{Error: err.Error(), Code: core.TextCode(err)})
		return
	}

	result, err := dispatcher.Dispatch(r.Context(), req)
	status := result.StatusCode
	if status == 0 {
		status = core.HTTPStatus(err)
	}
	out := response{
		Accepted:  result.Accepted && err == nil,
		RequestID: requestID(result, req),
	}
	if err != nil {
		out.Error = err.Error()
		out.Code = core.TextCode(err)
	}
	writeJSON(w, status, out)
}

func requestID(result core.InboundResult, req core.InboundRequest) string {
	for _, metadata := range []map[string]any{result.Metadata, req.Metadata} {
		if value, ok := metadata["request_id"].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
