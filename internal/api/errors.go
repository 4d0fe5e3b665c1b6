package api

import "net/http"

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse(9400, msg))
}

// MissingField writes a 400 error response naming the absent request field.
func MissingField(w http.ResponseWriter, field string) {
	resp := ErrorResponse(9400, "missing required field: "+field)
	resp.Errors[0].Source = &APIErrorSource{Pointer: "/" + field}
	WriteJSON(w, http.StatusBadRequest, resp)
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse(9401, "Authentication required"))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse(9404, msg))
}

// Gone writes a 410 error response.
func Gone(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusGone, ErrorResponse(9410, msg))
}

// TooLarge writes a 413 error response.
func TooLarge(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse(9413, msg))
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse(9500, msg))
}

// BadGateway writes a 502 error response, used when a remote backend
// rejected the operation. Notices collected for r are attached.
func BadGateway(w http.ResponseWriter, r *http.Request, msg string) {
	Respond(w, r, http.StatusBadGateway, ErrorResponse(9502, msg))
}
