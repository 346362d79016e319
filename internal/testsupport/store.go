package testsupport

import (
	"context"
	"fmt"
	"testing"

	"foildb/internal/imagestore"
)

// MustOpenStore opens an imagestore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string) *imagestore.Store {
	t.Helper()

	store, err := imagestore.Open(path)
	if err != nil {
		t.Fatalf("imagestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRow upserts one synthetic row keyed by titleID.
func SeedRow(t testing.TB, store *imagestore.Store, titleID, url string, image []byte) {
	t.Helper()

	if len(image) == 0 {
		image = []byte("payload-" + titleID)
	}
	err := store.UpsertBatch(context.Background(), []imagestore.Row{{
		TitleID: titleID,
		URL:     url,
		Format:  "jpg",
		Width:   128,
		Height:  128,
		SHA256:  fmt.Sprintf("%064x", len(image)),
		Image:   image,
	}})
	if err != nil {
		t.Fatalf("store.UpsertBatch: %v", err)
	}
}
