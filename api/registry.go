package api

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/crowdveil/crowdveil/registry"
)

// registryError maps registry errors to API errors.
func registryError(err error) Error {
	switch {
	case errors.Is(err, registry.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, registry.ErrNotRegistered):
		return ErrProfileNotFound
	case errors.Is(err, registry.ErrAlreadyRegistered):
		return ErrOperationRejected.WithErr(err)
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}

// registerCreator registers the signer as a campaign creator.
// POST /creators
func (a *API) registerCreator(w http.ResponseWriter, r *http.Request) {
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	profile, err := a.registry.RegisterCreator(sender)
	if err != nil {
		registryError(err).Write(w)
		return
	}
	httpWriteJSON(w, profile)
}

// creatorProfile returns a creator profile.
// GET /creators/{address}
func (a *API) creatorProfile(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, CreatorURLParam)
	if !common.IsHexAddress(raw) {
		ErrMalformedID.Withf("invalid address %q", raw).Write(w)
		return
	}
	profile, err := a.registry.Profile(common.HexToAddress(raw))
	if err != nil {
		registryError(err).Write(w)
		return
	}
	httpWriteJSON(w, profile)
}

// verifyCreator marks a creator as verified. The signer must hold the
// verifier or admin role.
// POST /creators/{address}/verify
func (a *API) verifyCreator(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, CreatorURLParam)
	if !common.IsHexAddress(raw) {
		ErrMalformedID.Withf("invalid address %q", raw).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.registry.MarkVerified(sender, common.HexToAddress(raw)); err != nil {
		registryError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// setRole grants or revokes a role. Admin only.
// POST /roles
func (a *API) setRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	var err error
	if req.Grant {
		err = a.registry.GrantRole(sender, req.Role, req.Address)
	} else {
		err = a.registry.RevokeRole(sender, req.Role, req.Address)
	}
	if err != nil {
		registryError(err).Write(w)
		return
	}
	httpWriteOK(w)
}
