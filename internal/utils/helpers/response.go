package helpers

import (
	"encoding/json"
	"net/http"

	"asahigaoka/internal/apperr"
)

type Response struct {
	Data     interface{}       `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Message  string            `json:"message,omitempty"`
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{Data: data})
}

// JSONMessage answers with data, a human-readable status and any warnings.
func JSONMessage(w http.ResponseWriter, status int, data interface{}, message string, warnings []string) {
	write(w, status, Response{Data: data, Message: message, Warnings: warnings})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	write(w, status, Response{Error: errMsg})
}

// AppError maps err to its HTTP status. Errors without a kind are not echoed.
func AppError(w http.ResponseWriter, err error) {
	msg := "internal error"
	if apperr.KindOf(err) != "" {
		msg = apperr.MessageOf(err)
	}
	write(w, apperr.HTTPStatus(err), Response{Error: msg, Fields: apperr.FieldsOf(err)})
}
