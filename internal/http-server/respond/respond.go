package respond

import (
	"encoding/json"
	"net/http"

	"chizhikfront/internal/api/chizhik/endpoints"
)

type ErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	var b ErrorBody
	b.Error.Code = code
	b.Error.Message = msg
	WriteJSON(w, status, b)
}

// WriteUpstreamError maps a backend request failure onto a section-level
// error body, so categories and products can fail independently with a
// distinct hint each.
func WriteUpstreamError(w http.ResponseWriter, section string, err error) {
	re, ok := endpoints.AsRequestError(err)
	if !ok {
		WriteError(w, http.StatusBadGateway, section+"_unavailable", "upstream error")
		return
	}
	switch re.Kind {
	case endpoints.KindExhausted:
		WriteError(w, http.StatusGatewayTimeout, section+"_not_ready", "backend is still preparing data, try again")
	case endpoints.KindHTTPStatus:
		if re.Status == http.StatusNotFound {
			WriteError(w, http.StatusNotFound, section+"_not_found", "not found")
			return
		}
		WriteError(w, http.StatusBadGateway, section+"_unavailable", re.Error())
	default:
		WriteError(w, http.StatusBadGateway, section+"_unavailable", re.Error())
	}
}
