package respond

import (
	"encoding/json"
	"net/http"
	"time"
)

type ErrorResponse struct {
	Type      string    `json:"type"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, errType, message string) {
	JSON(w, r, code, ErrorResponse{
		Type:      errType,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}
