// internal/process/poison.go
package process

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/goodads/thumbnailer/pkg/schema"
)

// PoisonHandler is the terminal sink for messages that exhausted their
// delivery attempts. It records the original message for operator visibility
// and nothing else: no retry, no error, no re-enqueue.
type PoisonHandler struct {
	logger *slog.Logger
}

func NewPoisonHandler(logger *slog.Logger) *PoisonHandler {
	return &PoisonHandler{logger: logger}
}

func (h *PoisonHandler) Handle(_ context.Context, data []byte) {
	var req schema.ThumbnailRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.Error("poison message is not a thumbnail request",
			"payload", truncate(data, 512), "err", err)
		return
	}
	h.logger.Error("thumbnail request exhausted its delivery attempts",
		"ad_id", req.AdID, "blob_uri", req.BlobURI, "message", req.String())
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
