package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Khyle1o1/student-management-system-sub000/brackets"
	"github.com/Khyle1o1/student-management-system-sub000/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(js)
}

func errorResponse(w http.ResponseWriter, status int, message interface{}) {
	writeJSON(w, status, jsonResponse{"error": message})
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

func serverErrorResponse(w http.ResponseWriter, err error) {
	slog.Error("internal server error", slog.Any("error", err))
	errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func idParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}

// mapServiceErrorToHTTP translates service and engine errors into HTTP
// status codes. Unknown errors fall through to 500.
func mapServiceErrorToHTTP(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrNotFound),
		errors.Is(err, brackets.ErrMatchNotFound):
		errorResponse(w, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		errorResponse(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrTeamAlreadyRegistered),
		errors.Is(err, services.ErrBracketAlreadyCreated),
		errors.Is(err, services.ErrBracketAlreadyStarted),
		errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrTournamentCompleted),
		errors.Is(err, services.ErrTournamentCanceled),
		errors.Is(err, services.ErrSeedingConflict),
		errors.Is(err, brackets.ErrRandomizeLocked),
		errors.Is(err, brackets.ErrAttemptsExhausted),
		errors.Is(err, brackets.ErrAlreadyLocked),
		errors.Is(err, brackets.ErrBracketNotLocked),
		errors.Is(err, brackets.ErrMatchCanceled),
		errors.Is(err, brackets.ErrDownstreamCompleted):
		errorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrInvalidBracketType),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidRandomAttempts),
		errors.Is(err, services.ErrNotEnoughTeams),
		errors.Is(err, services.ErrBracketNotCreated),
		errors.Is(err, services.ErrUnsupportedLogoFormat),
		errors.Is(err, brackets.ErrInvalidTeamCount),
		errors.Is(err, brackets.ErrTeamCountMismatch),
		errors.Is(err, brackets.ErrTeamNotInMatch):
		errorResponse(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, services.ErrLogoStorageNotConfigured):
		errorResponse(w, http.StatusNotImplemented, err.Error())

	default:
		serverErrorResponse(w, err)
	}
}
