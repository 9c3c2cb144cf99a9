package beans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sseHandler(t *testing.T, batches []ResultSet, complete ResultSet) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rpc/stream" {
			t.Errorf("path: got %s, want /rpc/stream", r.URL.Path)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		write := func(event string, set ResultSet) {
			data, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": "1", "result": set})
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		}
		for _, b := range batches {
			write("batch", b)
		}
		write("complete", complete)
	}
}

func TestSimilaritySearchStream(t *testing.T) {
	batches := []ResultSet{
		{Matches: []Match{{ID: "a"}, {ID: "b"}}, Total: 2, Level: "primary"},
		{Matches: []Match{{ID: "c"}}, Total: 1, Level: "primary"},
	}
	complete := ResultSet{Matches: []Match{{ID: "a"}, {ID: "b"}, {ID: "c"}}, Total: 3, Level: "primary"}

	srv := httptest.NewServer(sseHandler(t, batches, complete))
	defer srv.Close()

	client, _ := New(srv.URL)

	var got []ResultSet
	var finals int
	err := client.SimilaritySearchStream(context.Background(),
		SimilarityQuery{FlavorTags: []string{"chocolate"}},
		func(set ResultSet, final bool) error {
			got = append(got, set)
			if final {
				finals++
			}
			return nil
		})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("emissions: got %d, want 3", len(got))
	}
	if finals != 1 {
		t.Errorf("final emissions: got %d, want 1", finals)
	}
	if got[2].Total != 3 {
		t.Errorf("complete set: got %+v", got[2])
	}
}

func TestSimilaritySearchStream_CallbackError(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t,
		[]ResultSet{{Matches: []Match{{ID: "a"}}, Total: 1}},
		ResultSet{Total: 1},
	))
	defer srv.Close()

	client, _ := New(srv.URL)
	sentinel := errors.New("stop")
	err := client.SimilaritySearchStream(context.Background(),
		SimilarityQuery{FlavorTags: []string{"chocolate"}},
		func(set ResultSet, final bool) error { return sentinel })

	if !errors.Is(err, sentinel) {
		t.Errorf("error: got %v, want callback error", err)
	}
}

func TestSimilaritySearchStream_PreStreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": "1",
			"error": Error{Code: -32602, Message: "invalid query"},
		})
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	err := client.SimilaritySearchStream(context.Background(), SimilarityQuery{},
		func(set ResultSet, final bool) error { return nil })

	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("error: got %v, want ErrInvalidQuery", err)
	}
}

func TestSimilaritySearchStream_TruncatedStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		data, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": "1", "result": ResultSet{Total: 1}})
		_, _ = fmt.Fprintf(w, "event: batch\ndata: %s\n\n", data)
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	err := client.SimilaritySearchStream(context.Background(),
		SimilarityQuery{FlavorTags: []string{"chocolate"}},
		func(set ResultSet, final bool) error { return nil })

	if err == nil {
		t.Error("expected error for stream without complete event")
	}
}
