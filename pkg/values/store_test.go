package values_test

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/values"
)

func TestMemoryStoreSetCreatesNestedContainers(t *testing.T) {
	t.Parallel()

	store := values.NewMemoryStore(nil)
	for path, value := range map[string]any{
		"propertyUsage":     "pg",
		"address.city":      "Pune",
		"photos.1.caption":  "Kitchen",
		"rooms.0.0":         "master",
		"address.locality":  "Baner",
	} {
		if err := store.Set(path, value); err != nil {
			t.Fatalf("Set(%q): %v", path, err)
		}
	}

	testsupport.AssertEqual(t, map[string]any{
		"propertyUsage": "pg",
		"address":       map[string]any{"city": "Pune", "locality": "Baner"},
		"photos":        []any{nil, map[string]any{"caption": "Kitchen"}},
		"rooms":         []any{[]any{"master"}},
	}, store.Snapshot())

	got, ok := store.Get("photos.1.caption")
	if !ok || got != "Kitchen" {
		t.Fatalf("unexpected Get result %v %v", got, ok)
	}
}

func TestMemoryStoreKeepsFlattenedKeys(t *testing.T) {
	t.Parallel()

	store := values.NewMemoryStore(map[string]any{"address.city": "Pune"})
	if err := store.Set("address.city", "Mumbai"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	testsupport.AssertEqual(t, map[string]any{"address.city": "Mumbai"}, store.Snapshot())

	if err := store.Delete("address.city"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Get("address.city"); ok {
		t.Fatalf("expected value to be deleted")
	}
}

func TestMemoryStoreSnapshotsAreIsolated(t *testing.T) {
	t.Parallel()

	prefill := map[string]any{"amenities": []any{"lift"}}
	store := values.NewMemoryStore(prefill)
	prefill["amenities"].([]any)[0] = "gym"

	snap := store.Snapshot()
	snap["amenities"].([]any)[0] = "pool"

	got, _ := store.Get("amenities")
	testsupport.AssertEqual(t, []any{"lift"}, got)
}

func TestMemoryStoreRejectsInvalidPaths(t *testing.T) {
	t.Parallel()

	store := values.NewMemoryStore(map[string]any{"name": "x"})
	if err := store.Set("", 1); err == nil {
		t.Fatalf("expected empty path error")
	}
	if err := store.Set("a..b", 1); err == nil {
		t.Fatalf("expected invalid path error")
	}
	if err := store.Set("name.first", 1); err != nil {
		t.Fatalf("expected scalar to be replaced by a map, got %v", err)
	}
}

func TestMemoryStoreSubscribe(t *testing.T) {
	t.Parallel()

	store := values.NewMemoryStore(nil)
	var changes []values.Change
	unsubscribe := store.Subscribe(func(c values.Change) {
		changes = append(changes, c)
	})

	_ = store.Set("bhk", 2)
	store.Replace(map[string]any{"bhk": 3})
	unsubscribe()
	unsubscribe()
	_ = store.Set("bhk", 4)

	testsupport.AssertEqual(t, []values.Change{
		{Path: "bhk", Value: 2},
		{},
	}, changes)
}

func TestMemoryStoreRejectsRunawayListIndexes(t *testing.T) {
	t.Parallel()

	store := values.NewMemoryStore(map[string]any{"photos": []any{"a"}})
	if err := store.Set("photos.50000000", "b"); err == nil {
		t.Fatalf("expected error for huge index")
	}
	if err := store.Set("gallery.50000000.caption", "b"); err == nil {
		t.Fatalf("expected error for huge nested index")
	}
	testsupport.AssertEqual(t, map[string]any{"photos": []any{"a"}}, store.Snapshot())

	if err := store.Set("photos.3", "d"); err != nil {
		t.Fatalf("small gaps should still be allowed: %v", err)
	}
	testsupport.AssertEqual(t, map[string]any{"photos": []any{"a", nil, nil, "d"}}, store.Snapshot())
}
