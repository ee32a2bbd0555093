package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crowdveil/crowdveil/log"
)

// Error is the unit of the API's error vocabulary: a stable numeric code,
// the HTTP status it travels with and the underlying error. Handlers pick
// one of the predefined values and optionally annotate it before writing.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

// MarshalJSON emits the wire form, {"error":...,"code":...}. The HTTP
// status is carried by the response itself, not the body.
func (e Error) MarshalJSON() ([]byte, error) {
	// json.Marshal never calls Err.Error(), so flatten it by hand
	return json.Marshal(
		struct {
			Err  string `json:"error"`
			Code int    `json:"code"`
		}{
			Err:  e.Err.Error(),
			Code: e.Code,
		})
}

func (e Error) Error() string {
	return e.Err.Error()
}

// Write sends the error as the JSON body of a response with the error's
// HTTP status.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	if log.Level() == log.LogLevelDebug {
		log.Debugw("API error response", "error", e.Error(), "code", e.Code, "httpStatus", e.HTTPstatus)
	}
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, string(msg), e.HTTPstatus)
}

// Withf annotates the error with a formatted detail string. Code and
// status are preserved, so errors.Is against the predefined value holds.
func (e Error) Withf(format string, args ...any) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, fmt.Sprintf(format, args...)),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// With annotates the error with a plain detail string.
func (e Error) With(s string) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, s),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// WithErr annotates the error with the message of a causing error.
func (e Error) WithErr(err error) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, err.Error()),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}
