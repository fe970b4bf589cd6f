// Package errors provides the machine-readable failure codes carried by
// match results and a structured error type that wraps them.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Dispatch errors
	CodeValidation              Code = "VALIDATION_ERROR"
	CodeUnregisteredRequestType Code = "UNREGISTERED_REQUEST_TYPE"
	CodeHandlerFault            Code = "HANDLER_FAULT"

	// Economy errors
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"

	// Placement errors
	CodeInvalidPosition     Code = "INVALID_POSITION"
	CodeUnknownBuildingType Code = "UNKNOWN_BUILDING_TYPE"
	CodeBuildingNotFound    Code = "BUILDING_NOT_FOUND"

	// Progression errors
	CodeWaveOutOfSequence  Code = "WAVE_OUT_OF_SEQUENCE"
	CodeRoundOutOfSequence Code = "ROUND_OUT_OF_SEQUENCE"
	CodeInvalidPhase       Code = "INVALID_PHASE"
	CodeMatchAlreadyEnded  Code = "MATCH_ALREADY_ENDED"

	// Simulation errors
	CodeSimulationAborted Code = "SIMULATION_ABORTED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - malformed or out-of-range arguments
	case CodeValidation,
		CodeInvalidAmount,
		CodeInvalidPosition,
		CodeUnknownBuildingType:
		return http.StatusBadRequest

	// Conflict - state doesn't allow operation
	case CodeInsufficientFunds,
		CodeWaveOutOfSequence,
		CodeRoundOutOfSequence,
		CodeInvalidPhase,
		CodeMatchAlreadyEnded:
		return http.StatusConflict

	case CodeBuildingNotFound:
		return http.StatusNotFound

	case CodeUnregisteredRequestType:
		return http.StatusNotImplemented

	default:
		return http.StatusInternalServerError
	}
}

// String returns the code value.
func (c Code) String() string {
	return string(c)
}
