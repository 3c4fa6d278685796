package server

import (
	"errors"
	"net/http"

	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
	"github.com/Ashenafi-pixel/house-edge-sim/sim"
)

// APIError is the standard error response body.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, code int, errMsg, codeStr string) {
	writeJSON(w, code, APIError{
		Error:   errMsg,
		Code:    codeStr,
		Message: errMsg,
	})
}

// errorCode maps a simulation error to its API code; ok is false for
// errors that are not caused by the request.
func errorCode(err error) (code string, ok bool) {
	switch {
	case errors.Is(err, gamemath.ErrInvalidHouseP):
		return "INVALID_HOUSE_P", true
	case errors.Is(err, gamemath.ErrInvalidEdge):
		return "INVALID_EDGE", true
	case errors.Is(err, gamemath.ErrUnknownModel):
		return "UNKNOWN_MODEL", true
	case errors.Is(err, sim.ErrInvalidTrials):
		return "INVALID_TRIALS", true
	case errors.Is(err, sim.ErrInvalidRange):
		return "INVALID_RANGE", true
	case errors.Is(err, sim.ErrInvalidSweep):
		return "INVALID_SWEEP", true
	case errors.Is(err, sim.ErrInvalidBankroll):
		return "INVALID_BANKROLL", true
	}
	return "", false
}

// writeSimError answers 400 for validation failures and 500 otherwise.
func writeSimError(w http.ResponseWriter, err error) {
	if code, ok := errorCode(err); ok {
		writeError(w, http.StatusBadRequest, err.Error(), code)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
}
