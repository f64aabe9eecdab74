package server

import (
	"encoding/json"
	"net/http"

	"github.com/tranvictor/shadowvote/common"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusOf maps an error kind to the HTTP status reported for it.
func statusOf(err error) int {
	switch common.KindOf(err) {
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindValidation, common.KindInvalidChoice:
		return http.StatusBadRequest
	case common.KindInactive:
		return http.StatusConflict
	case common.KindCanceled:
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusOf(err), err.Error())
}
