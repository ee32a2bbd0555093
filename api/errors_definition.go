//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
// If you notice there's a gap (say, error code 40010, 40011 and 40013 exist, 40012 is missing) DON'T fill in the gap,
// that code was used in the past for some error (not anymore) and shouldn't be reused.
var (
	ErrResourceNotFound    = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody       = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidSignature    = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid signature")}
	ErrMalformedID         = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed identifier")}
	ErrCampaignNotFound    = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("campaign not found")}
	ErrUnauthorized        = Error{Code: 40008, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("caller not authorized")}
	ErrInvalidPhase        = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("operation not allowed in current phase")}
	ErrInvalidProof        = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("commitment opening proof invalid")}
	ErrInvalidParams       = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid parameters")}
	ErrNotEligible         = Error{Code: 40012, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("creator not eligible")}
	ErrPoolNotFound        = Error{Code: 40013, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("pool not found")}
	ErrOrderNotFound       = Error{Code: 40014, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("order not found")}
	ErrNothingClaimable    = Error{Code: 40015, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("nothing claimable")}
	ErrInsufficientFunds   = Error{Code: 40016, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("insufficient funds")}
	ErrProfileNotFound     = Error{Code: 40017, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("creator profile not found")}
	ErrOperationRejected   = Error{Code: 40018, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("operation rejected")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
