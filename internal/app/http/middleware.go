package http

import (
	"context"
	"net/http"
	"time"

	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id, generated when the client does not send one.
const RequestIDHeader = "X-Request-Id"

type ctxKey int

const loggerKey ctxKey = iota

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func requestLogger(r *http.Request) *log.Entry {
	if l, ok := r.Context().Value(loggerKey).(*log.Entry); ok {
		return l
	}
	return log.NewEntry(log.StandardLogger())
}

// observe wraps the route handler with the request id, access logging and metrics.
func observe(route string, collector *metrics.Collector, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		logger := log.WithFields(log.Fields{"requestId": id, "method": r.Method, "route": route})
		r = r.WithContext(context.WithValue(r.Context(), loggerKey, logger))

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next(sw, r, ps)

		took := time.Since(start)
		collector.ObserveRequest(route, r.Method, sw.code, took)
		logger.WithFields(log.Fields{"path": r.URL.Path, "code": sw.code, "took": took}).Debug("request handled")
	}
}
