package cache

import (
	"context"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"time concept", Key{Database: 2, Concept: "time"}, "wb:mrv:2:time"},
		{"other database", Key{Database: 57, Concept: "version"}, "wb:mrv:57:version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{Database: 2, Concept: "time"}

	// Miss before any set.
	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, key, "YR2024"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := store.Get(ctx, key)
	if err != nil || !ok || value != "YR2024" {
		t.Fatalf("expected hit with YR2024, got %q ok=%v err=%v", value, ok, err)
	}

	// Keys are scoped by database.
	if _, ok, _ := store.Get(ctx, Key{Database: 3, Concept: "time"}); ok {
		t.Error("unexpected hit for a different database")
	}

	if err := store.Invalidate(ctx, key); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, key); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{Database: 2, Concept: "time"}

	_ = store.Set(ctx, key, "YR2023")
	_ = store.Set(ctx, key, "YR2024")

	value, ok, _ := store.Get(ctx, key)
	if !ok || value != "YR2024" {
		t.Errorf("expected overwritten value YR2024, got %q", value)
	}
}
