package flavor

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

// recordingSink captures every emission.
type recordingSink struct {
	batches []catalog.ResultSet
	finals  []catalog.ResultSet
	failAt  int // fail the nth Emit call (1-based), 0 = never
	calls   int
}

func (s *recordingSink) Emit(batch catalog.ResultSet, final bool) error {
	s.calls++
	if s.failAt > 0 && s.calls >= s.failAt {
		return errors.New("sink closed")
	}
	if final {
		s.finals = append(s.finals, batch)
	} else {
		s.batches = append(s.batches, batch)
	}
	return nil
}

func streamStore(n int) *mockStore {
	rows := make([]catalog.ProductRow, n)
	for i := range rows {
		rows[i] = productRow(string(rune('a'+i)), 0.9-float64(i)*0.05, false)
	}
	return &mockStore{rowsByThreshold: map[float64][]catalog.ProductRow{DefaultThreshold: rows}}
}

func TestStream_BatchShape(t *testing.T) {
	svc := newService(streamStore(7), newMockCache())
	sink := &recordingSink{}

	err := svc.Stream(context.Background(), query(t, 10, "chocolate"), sink, time.Millisecond)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	// 7 matches: initial batch of 2, then 3, then 2.
	if len(sink.batches) != 3 {
		t.Fatalf("partial batches = %d, want 3", len(sink.batches))
	}
	sizes := []int{len(sink.batches[0].Matches), len(sink.batches[1].Matches), len(sink.batches[2].Matches)}
	if !reflect.DeepEqual(sizes, []int{2, 3, 2}) {
		t.Errorf("batch sizes = %v, want [2 3 2]", sizes)
	}
	if len(sink.finals) != 1 {
		t.Fatalf("final emissions = %d, want exactly 1", len(sink.finals))
	}
}

func TestStream_FinalEqualsResolve(t *testing.T) {
	store := streamStore(5)
	cache := newMockCache()
	svc := newService(store, cache)

	want, err := svc.Resolve(context.Background(), query(t, 10, "chocolate"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	sink := &recordingSink{}
	// Same tags: the stream replays the cached resolution.
	if err := svc.Stream(context.Background(), query(t, 10, "chocolate"), sink, time.Millisecond); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if !reflect.DeepEqual(sink.finals[0], want) {
		t.Errorf("final emission differs from Resolve:\nstream:  %+v\nresolve: %+v", sink.finals[0], want)
	}
}

func TestStream_BatchesCoverFinalInOrder(t *testing.T) {
	svc := newService(streamStore(6), newMockCache())
	sink := &recordingSink{}

	if err := svc.Stream(context.Background(), query(t, 10, "chocolate"), sink, time.Millisecond); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var accumulated []catalog.Match
	for _, b := range sink.batches {
		accumulated = append(accumulated, b.Matches...)
	}
	if !reflect.DeepEqual(accumulated, sink.finals[0].Matches) {
		t.Errorf("concatenated batches differ from final set")
	}
	for i := 1; i < len(accumulated); i++ {
		if accumulated[i].Similarity > accumulated[i-1].Similarity {
			t.Fatalf("batch ordering violated at %d", i)
		}
	}
}

func TestStream_SinkFailureHaltsQuietly(t *testing.T) {
	svc := newService(streamStore(7), newMockCache())
	sink := &recordingSink{failAt: 2}

	err := svc.Stream(context.Background(), query(t, 10, "chocolate"), sink, time.Millisecond)
	if err != nil {
		t.Fatalf("sink failure must not surface, got %v", err)
	}
	if len(sink.finals) != 0 {
		t.Error("no final emission expected after sink failure")
	}
}

func TestStream_CancelledBetweenBatches(t *testing.T) {
	svc := newService(streamStore(7), newMockCache())
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// First batch goes out before the first delay; cancellation stops the rest.
	err := svc.Stream(ctx, query(t, 10, "chocolate"), sink, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(sink.batches) != 1 {
		t.Errorf("batches = %d, want 1 before cancellation", len(sink.batches))
	}
	if len(sink.finals) != 0 {
		t.Error("no final emission expected after cancellation")
	}
}

func TestStream_EmptyStoreEmitsOnlyFinal(t *testing.T) {
	svc := newService(&mockStore{}, newMockCache())
	sink := &recordingSink{}

	if err := svc.Stream(context.Background(), query(t, 10, "chocolate"), sink, time.Millisecond); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(sink.batches) != 0 {
		t.Errorf("partial batches = %d, want 0 for empty store", len(sink.batches))
	}
	if len(sink.finals) != 1 || sink.finals[0].Total != 0 {
		t.Errorf("final = %+v, want single empty emission", sink.finals)
	}
}

func TestStream_TerminalErrorSurfaces(t *testing.T) {
	store := &mockStore{
		searchErr:   errors.New("down"),
		fallbackErr: errors.New("down"),
	}
	svc := newService(store, newMockCache())
	sink := &recordingSink{}

	err := svc.Stream(context.Background(), query(t, 10, "chocolate"), sink, time.Millisecond)
	if err == nil {
		t.Fatal("expected terminal resolution error")
	}
	if sink.calls != 0 {
		t.Error("nothing should be emitted on terminal failure")
	}
}
