package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/crowdveil/crowdveil/crypto/ethereum"
	"github.com/crowdveil/crowdveil/log"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// urlParamUint64 parses a numeric URL parameter.
func urlParamUint64(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, name), 10, 64)
}

// decodeSigned unmarshals a signed request body, verifies the signature
// over the payload and decodes the payload into out. Returns the recovered
// sender address.
func decodeSigned(r *http.Request, out any) (common.Address, *Error) {
	var req SignedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		e := ErrMalformedBody.WithErr(err)
		return common.Address{}, &e
	}
	if len(req.Payload) == 0 || len(req.Signature) == 0 {
		e := ErrMalformedBody.With("missing payload or signature")
		return common.Address{}, &e
	}
	sender, err := ethereum.AddrFromSignature(req.Payload, req.Signature)
	if err != nil {
		e := ErrInvalidSignature.WithErr(err)
		return common.Address{}, &e
	}
	if out != nil {
		if err := json.Unmarshal(req.Payload, out); err != nil {
			e := ErrMalformedBody.WithErr(err)
			return common.Address{}, &e
		}
	}
	return sender, nil
}
