package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	r := miniredis.RunT(t)

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"", "*storage.MemoryStore", false},
		{"memory://", "*storage.MemoryStore", false},
		{fmt.Sprintf("redis://%s", r.Addr()), "*storage.RedisStore", false},
		{"sqlite://" + filepath.Join(t.TempDir(), "a.db"), "*storage.GormStore", false},
		{"file:" + filepath.Join(t.TempDir(), "b.db"), "*storage.GormStore", false},
		{"s3://bucket/key", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			d, err := Open(ctx, tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer d.Close()
			if got := fmt.Sprintf("%T", d); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	value := []byte("abc")
	if err := ms.Write(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'

	got, ok, _ := ms.Read(ctx, "k")
	if !ok || string(got) != "abc" {
		t.Errorf("expected stored copy abc, got %q", got)
	}
	if ms.Writes() != 1 {
		t.Errorf("expected 1 write, got %d", ms.Writes())
	}
	_ = ms.Clear(ctx, "k")
	if _, ok, _ := ms.Read(ctx, "k"); ok {
		t.Error("expected key to be cleared")
	}
}
