package process

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/goodads/thumbnailer/pkg/schema"
)

func TestPoisonHandlerLogsOriginalMessage(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPoisonHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	payload, err := json.Marshal(schema.ThumbnailRequest{AdID: 13, BlobURI: "http://blobs/images/broken.jpg"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	handler.Handle(context.Background(), payload)

	logged := buf.String()
	if !strings.Contains(logged, "ad_id=13") {
		t.Fatalf("poison log missing ad id: %s", logged)
	}
	if !strings.Contains(logged, "broken.jpg") {
		t.Fatalf("poison log missing blob uri: %s", logged)
	}
}

func TestPoisonHandlerSwallowsGarbage(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPoisonHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	// Must not panic or error; best-effort logging only.
	handler.Handle(context.Background(), []byte("{{{ not json"))

	if buf.Len() == 0 {
		t.Fatal("expected a log entry for undecodable poison message")
	}
}
