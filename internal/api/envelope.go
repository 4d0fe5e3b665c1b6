package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/leca/menudesk/internal/notify"
)

// Response is the standard JSON response envelope.
type Response struct {
	Result   interface{}  `json:"result"`
	Success  bool         `json:"success"`
	Errors   []APIError   `json:"errors"`
	Messages []APIMessage `json:"messages"`
}

// APIMessage is an advisory notice raised while serving the request.
type APIMessage struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity,omitempty"`
}

// APIError represents a single error in the response.
type APIError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Source  *APIErrorSource `json:"source,omitempty"`
}

// APIErrorSource identifies the field that caused the error.
type APIErrorSource struct {
	Pointer string `json:"pointer"`
}

// Message codes by notice severity.
const (
	MessageInfo    = 1000
	MessageWarning = 1001
	MessageError   = 1002
)

// SuccessResponse builds a successful response.
func SuccessResponse(result interface{}) Response {
	return Response{
		Result:   result,
		Success:  true,
		Errors:   []APIError{},
		Messages: []APIMessage{},
	}
}

// ErrorResponse builds an error response.
func ErrorResponse(code int, message string) Response {
	return Response{
		Result:  nil,
		Success: false,
		Errors: []APIError{
			{Code: code, Message: message},
		},
		Messages: []APIMessage{},
	}
}

// WithNotices appends notices to the response messages.
func (r Response) WithNotices(notices []notify.Notice) Response {
	for _, n := range notices {
		r.Messages = append(r.Messages, APIMessage{
			Code:     messageCode(n.Severity),
			Message:  n.Message,
			Severity: string(n.Severity),
		})
	}
	return r
}

func messageCode(s notify.Severity) int {
	switch s {
	case notify.SeverityWarning:
		return MessageWarning
	case notify.SeverityError:
		return MessageError
	default:
		return MessageInfo
	}
}

// WriteJSON serialises resp as JSON and writes it to w with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("WriteJSON: failed to encode response: %v", err)
	}
}

// Respond writes resp after attaching the notices collected for r.
func Respond(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	if c := notify.CollectorFrom(r.Context()); c != nil {
		resp = resp.WithNotices(c.Notices())
	}
	WriteJSON(w, status, resp)
}
