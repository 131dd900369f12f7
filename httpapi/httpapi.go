// Package httpapi mounts the worker-facing HTTP surface for a wq.WorkQueue
// (spec §6, SPEC_FULL §4.14): one chi.Router per queue exposing claim_job,
// reclaim_job and resolve_job, guarded by a static per-queue bearer token.
//
// This package deliberately does not expose enqueue, cancel or inspect
// routes: only the three worker verbs are mounted, leaving
// enqueue/administration to in-process callers of the wq package directly.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eijebong/wq"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// claimJobRequest is the claim_job request body.
type claimJobRequest struct {
	WorkerId string `json:"worker_id"`
}

// reclaimJobRequest is the reclaim_job request body.
type reclaimJobRequest struct {
	WorkerId string `json:"worker_id"`
	JobId    string `json:"job_id"`
}

// resolveJobRequest is the resolve_job request body.
type resolveJobRequest[R any] struct {
	WorkerId string       `json:"worker_id"`
	JobId    string       `json:"job_id"`
	Status   wq.JobStatus `json:"status"`
	Result   R            `json:"result"`
}

// RegisterRoutes mounts claim_job, reclaim_job and resolve_job under prefix
// on r, guarded by an X-Worker-Auth bearer token equal to token
// (SPEC_FULL §4.14). prefix should not have a trailing slash, e.g. "/build".
func RegisterRoutes[T any, R any](r chi.Router, prefix, token string, q *wq.WorkQueue[T, R]) {
	r.Route(prefix, func(sub chi.Router) {
		sub.Use(workerAuth(token))
		sub.Post("/claim_job", claimJobHandler(q))
		sub.Post("/reclaim_job", reclaimJobHandler(q))
		sub.Post("/resolve_job", resolveJobHandler[T, R](q))
	})
}

// workerAuth rejects any request whose X-Worker-Auth header does not equal
// token.
func workerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Worker-Auth") != token {
				writeError(w, http.StatusUnauthorized, "invalid or missing X-Worker-Auth header")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func claimJobHandler[T any, R any](q *wq.WorkQueue[T, R]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body claimJobRequest
		if !decodeBody(w, req, &body) {
			return
		}
		job, err := q.ClaimJob(req.Context(), body.WorkerId)
		if err != nil {
			writeWQError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func reclaimJobHandler[T any, R any](q *wq.WorkQueue[T, R]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body reclaimJobRequest
		if !decodeBody(w, req, &body) {
			return
		}
		id, err := uuid.Parse(body.JobId)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed job_id")
			return
		}
		if err := q.ReclaimJob(req.Context(), id, body.WorkerId); err != nil {
			writeWQError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func resolveJobHandler[T any, R any](q *wq.WorkQueue[T, R]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body resolveJobRequest[R]
		if !decodeBody(w, req, &body) {
			return
		}
		id, err := uuid.Parse(body.JobId)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed job_id")
			return
		}
		if err := q.ResolveJob(req.Context(), body.WorkerId, id, body.Status, body.Result); err != nil {
			writeWQError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeBody(w http.ResponseWriter, req *http.Request, dst any) bool {
	defer req.Body.Close()
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// writeWQError maps a *wq.Error to an HTTP status exactly per spec §6's
// error-mapping table.
func writeWQError(w http.ResponseWriter, err error) {
	var wqErr *wq.Error
	if !errors.As(err, &wqErr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch wqErr.Kind {
	case wq.JobCancelled:
		writeError(w, http.StatusGone, "job has been cancelled")
	case wq.JobNotFound:
		writeError(w, http.StatusNotFound, "job not found")
	case wq.WorkerMismatch:
		writeError(w, http.StatusForbidden, "worker does not own this job")
	case wq.InvalidJobStatus:
		writeError(w, http.StatusBadRequest, "invalid job status: "+wqErr.Msg)
	default:
		writeError(w, http.StatusInternalServerError, wqErr.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
