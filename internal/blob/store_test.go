package blob

import (
	"context"
	"errors"
	"testing"
)

func TestThumbnailName(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"photo.jpg", "photo_thumbnail.jpg"},
		{"photo.PNG", "photo_thumbnail.jpg"},
		{"archive.tar.gz", "archive.tar_thumbnail.jpg"},
		{"no-extension", "no-extension_thumbnail.jpg"},
	}
	for _, c := range cases {
		if got := ThumbnailName(c.source); got != c.want {
			t.Errorf("ThumbnailName(%q) = %q, want %q", c.source, got, c.want)
		}
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("memory://images")

	uri, err := store.Put(ctx, "photo.jpg", []byte("payload"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if uri != "memory://images/photo.jpg" {
		t.Fatalf("unexpected uri: %s", uri)
	}

	data, err := store.Get(ctx, "photo.jpg")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content: %q", data)
	}

	contentType, ok := store.ContentType("photo.jpg")
	if !ok || contentType != "image/jpeg" {
		t.Fatalf("unexpected content type: %q (found=%v)", contentType, ok)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("")

	if _, err := store.Put(ctx, "a.jpg", []byte("one"), "image/jpeg"); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if _, err := store.Put(ctx, "a.jpg", []byte("two"), "image/jpeg"); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	data, err := store.Get(ctx, "a.jpg")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("overwrite not applied: %q", data)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single blob, have %d", store.Len())
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("")

	if _, err := store.Get(ctx, "missing.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "missing.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}
