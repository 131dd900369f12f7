package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eijebong/wq"
	"github.com/eijebong/wq/httpapi"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

func newTestServer(t *testing.T) (*httptest.Server, *wq.WorkQueue[string, string]) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx := context.Background()
	q, err := wq.NewWorkQueueBuilder[string, string]("build").Build(ctx, &redis.Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })

	r := chi.NewRouter()
	httpapi.RegisterRoutes(r, "/build", "secret-token", q)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, q
}

func postJSON(t *testing.T, srv *httptest.Server, path, token string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("X-Worker-Auth", token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	return resp
}

func TestClaimJobRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv, "/build/claim_job", "", map[string]string{"worker_id": "w1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestClaimJobWrongTokenRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv, "/build/claim_job", "wrong-token", map[string]string{"worker_id": "w1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestClaimJobReturnsJobWhenAvailable(t *testing.T) {
	srv, q := newTestServer(t)
	ctx := context.Background()
	id, err := q.EnqueueJob(ctx, "payload", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}

	resp := postJSON(t, srv, "/build/claim_job", "secret-token", map[string]string{"worker_id": "w1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var job wq.Job[string]
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if job.JobId != id {
		t.Fatalf("expected job %s, got %s", id, job.JobId)
	}
}

func TestReclaimJobUnknownReturns404(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv, "/build/reclaim_job", "secret-token", map[string]string{
		"worker_id": "w1",
		"job_id":    wq.NewJobId().String(),
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestResolveJobWrongWorkerReturns403(t *testing.T) {
	srv, q := newTestServer(t)
	ctx := context.Background()
	id, err := q.EnqueueJob(ctx, "payload", wq.Normal, time.Minute)
	if err != nil {
		t.Fatalf("EnqueueJob: %v", err)
	}
	if _, err := q.ClaimJob(ctx, "w1"); err != nil {
		t.Fatalf("ClaimJob: %v", err)
	}

	resp := postJSON(t, srv, "/build/resolve_job", "secret-token", map[string]any{
		"worker_id": "w2",
		"job_id":    id.String(),
		"status":    "Success",
		"result":    "done",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
