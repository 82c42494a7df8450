package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/Membrive92/TrackingFinance/pkg/logger"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

// WriteJSON writes data with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError maps err onto a status code and writes the error body. Server
// side failures are logged through the request-scoped entry.
func WriteError(w http.ResponseWriter, r *http.Request, fallback *logrus.Logger, err error) {
	status, body := ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), fallback).WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
	}
	WriteJSON(w, status, body)
}

// ErrorResponse returns the status code and body reported for err.
func ErrorResponse(err error) (int, models.ErrorResponse) {
	var (
		nf *models.NotFoundError
		ve *models.ValidationError
		ce *models.ConflictError
		se *models.StorageError
	)
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound, models.ErrorResponse{Error: nf.Error()}
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, models.ErrorResponse{Error: "validation failed", Fields: ve.Fields}
	case errors.As(err, &ce):
		return http.StatusConflict, models.ErrorResponse{Error: ce.Error()}
	case errors.As(err, &se):
		return http.StatusServiceUnavailable, models.ErrorResponse{Error: "storage unavailable"}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"}
	}
}

// decode reads a JSON body into dest. Malformed bodies are validation errors.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		var (
			typeErr *json.UnmarshalTypeError
			sizeErr *http.MaxBytesError
		)
		switch {
		case errors.Is(err, io.EOF):
			return models.NewValidationError("body", "request body is required")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return models.NewValidationError(typeErr.Field, "must be %s", jsonKind(typeErr.Type))
		case errors.As(err, &sizeErr):
			return models.NewValidationError("body", "request body exceeds %d bytes", sizeErr.Limit)
		default:
			return models.NewValidationError("body", "invalid JSON: %v", err)
		}
	}
	return nil
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid value"
	}
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	return positiveInt(mux.Vars(r)["id"], "id")
}

// queryID parses an optional positive integer query parameter. Zero means
// the parameter was absent.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return positiveInt(raw, name)
}

func positiveInt(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(field, "must be a positive integer")
	}
	return id, nil
}

var deleted = models.DeleteResponse{OK: true}
