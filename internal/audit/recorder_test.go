package audit

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryRecorderCopiesMetadata(t *testing.T) {
	recorder := NewInMemoryRecorder()
	metadata := map[string]any{"auto_load": true}
	if err := recorder.Record(context.Background(), Event{Action: "created", Metadata: metadata}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	metadata["auto_load"] = false

	events := recorder.Events()
	if len(events) != 1 || events[0].Metadata["auto_load"] != true {
		t.Fatalf("expected recorded metadata to be isolated, got %+v", events)
	}

	if err := recorder.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if len(recorder.Events()) != 0 {
		t.Fatal("expected no events after Clear")
	}
}

func TestInMemoryRecorderFail(t *testing.T) {
	recorder := NewInMemoryRecorder()
	boom := errors.New("boom")
	recorder.Fail(boom)
	if err := recorder.Record(context.Background(), Event{Action: "created"}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
}
