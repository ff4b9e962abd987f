package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/beldeveloper/cidash/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

// errorResponse is the body of every failed API request.
type errorResponse struct {
	Message string               `json:"message"`
	Errors  []errtype.FieldError `json:"errors,omitempty"`
	Details string               `json:"details,omitempty"`
}

// SetDefaultHeaders sets the basic set of headers to the response.
func SetDefaultHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Accept,Authorization,Accept-Language,Content-Type,Content-Language,X-GitHub-Event")
}

// apiError writes the classified error; fallback is the message of unexpected failures.
func (h Handler) apiError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	res := errorResponse{Message: fallback}
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errtype.ErrNotFound):
		code = http.StatusNotFound
		res.Message = "Not found"
	case errors.Is(err, errtype.ErrBadInput):
		code = http.StatusBadRequest
		res.Message = "Invalid input"
	default:
		requestLogger(r).WithError(err).Error(fallback)
	}
	var e *errtype.Error
	if code != http.StatusInternalServerError && stderrors.As(err, &e) {
		res.Message = e.Msg
		res.Errors = e.Fields
	}
	if h.env.Development() {
		res.Details = err.Error()
	}
	writeJSON(w, code, res)
}

func apiSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

func apiCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, data)
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	SetDefaultHeaders(w)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode the response")
	}
}
