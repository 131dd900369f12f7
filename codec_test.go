package wq_test

import (
	"encoding/json"
	"testing"

	"github.com/eijebong/wq"
)

func TestPriorityTextRoundTrip(t *testing.T) {
	for _, p := range []wq.Priority{wq.High, wq.Normal, wq.Low} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", p, err)
		}
		var got wq.Priority
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != p {
			t.Fatalf("round trip mismatch: got %v, want %v", got, p)
		}
	}
}

func TestPriorityUnmarshalUnknown(t *testing.T) {
	var p wq.Priority
	if err := p.UnmarshalText([]byte("Critical")); err == nil {
		t.Fatal("expected an error for an unknown priority string")
	}
}

func TestJobStatusJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Status wq.JobStatus `json:"status"`
	}
	for _, s := range []wq.JobStatus{wq.Success, wq.Failure, wq.InternalError} {
		data, err := json.Marshal(wrapper{Status: s})
		if err != nil {
			t.Fatalf("Marshal(%v): %v", s, err)
		}
		var got wrapper
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got.Status != s {
			t.Fatalf("round trip mismatch: got %v, want %v", got.Status, s)
		}
	}
}

func TestParseJobStatusUnknown(t *testing.T) {
	if _, err := wq.ParseJobStatus("Pending"); err == nil {
		t.Fatal("expected an error for an unknown job status string")
	}
}
