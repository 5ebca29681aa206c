package chatcontext

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_ReadUnknownUserIsEmpty(t *testing.T) {
	s := NewMemoryStore(5)
	got, err := s.Read(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if s.Len() != 0 {
		t.Fatalf("read must not create a context, len=%d", s.Len())
	}
}

func TestMemoryStore_AppendBoundsAndEvictsOldest(t *testing.T) {
	ctx := context.Background()
	for _, window := range []int{1, 5, 6} {
		s := NewMemoryStore(window)
		prev := 0
		for i := 0; i < 12; i++ {
			if err := s.Append(ctx, "u1", fmt.Sprintf("m%d", i)); err != nil {
				t.Fatalf("append: %v", err)
			}
			got, _ := s.Read(ctx, "u1")

			want := prev + 1
			if want > window {
				want = window
			}
			if len(got) != want {
				t.Fatalf("window=%d step=%d: len=%d want %d", window, i, len(got), want)
			}
			// хвост всегда последние want сообщений по порядку
			for k := range got {
				exp := fmt.Sprintf("m%d", i-want+1+k)
				if got[k] != exp {
					t.Fatalf("window=%d step=%d: got[%d]=%q want %q", window, i, k, got[k], exp)
				}
			}
			prev = len(got)
		}
	}
}

func TestMemoryStore_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	_ = s.Append(ctx, "a", Turn(SpeakerUser, "hi"))
	_ = s.Append(ctx, "b", Turn(SpeakerUser, "yo"))

	a, _ := s.Read(ctx, "a")
	b, _ := s.Read(ctx, "b")
	if len(a) != 1 || a[0] != "使用者: hi" {
		t.Fatalf("unexpected a: %#v", a)
	}
	if len(b) != 1 || b[0] != "使用者: yo" {
		t.Fatalf("unexpected b: %#v", b)
	}
}

func TestMemoryStore_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	_ = s.Append(ctx, "u", "x")

	got, _ := s.Read(ctx, "u")
	got[0] = "mutated"

	again, _ := s.Read(ctx, "u")
	if again[0] != "x" {
		t.Fatalf("store leaked internal slice: %#v", again)
	}
}

func TestMemoryStore_ConcurrentAppendsKeepBound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(5)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = s.Append(ctx, "same", fmt.Sprintf("g%d-%d", g, i))
				_, _ = s.Read(ctx, "same")
			}
		}(g)
	}
	wg.Wait()

	got, _ := s.Read(ctx, "same")
	if len(got) != 5 {
		t.Fatalf("expected 5 turns, got %d", len(got))
	}
}

func TestMemoryStore_EvictIdle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(5)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	_ = s.Append(ctx, "old", "a")

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	_ = s.Append(ctx, "fresh", "b")

	n, err := s.EvictIdle(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("evict: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	if got, _ := s.Read(ctx, "old"); len(got) != 0 {
		t.Fatalf("old context survived: %#v", got)
	}
	if got, _ := s.Read(ctx, "fresh"); len(got) != 1 {
		t.Fatalf("fresh context lost: %#v", got)
	}

	// после удаления пользователь начинает с чистого листа
	_ = s.Append(ctx, "old", "again")
	if got, _ := s.Read(ctx, "old"); len(got) != 1 || got[0] != "again" {
		t.Fatalf("unexpected recreated context: %#v", got)
	}
}

func TestMemoryStore_ReadSkipsEvictedLog(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(5)
	_ = s.Append(ctx, "u", "a")
	_ = s.Append(ctx, "u", "b")

	// Read уже нашёл лог, а EvictIdle успел пометить его удалённым
	s.mu.RLock()
	ul := s.users["u"]
	s.mu.RUnlock()
	ul.mu.Lock()
	ul.evicted = true
	ul.mu.Unlock()

	got, err := s.Read(ctx, "u")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("evicted log must read empty, got %#v", got)
	}
}

func TestMemoryStore_SnapshotRestoreTrimsToWindow(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore(6)
	for i := 0; i < 6; i++ {
		_ = src.Append(ctx, "u", fmt.Sprintf("m%d", i))
	}

	dst := NewMemoryStore(3)
	dst.Restore(src.Snapshot())

	got, _ := dst.Read(ctx, "u")
	want := []string{"m3", "m4", "m5"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNewMemoryStore_DefaultWindow(t *testing.T) {
	if w := NewMemoryStore(0).Window(); w != DefaultWindow {
		t.Fatalf("expected default window %d, got %d", DefaultWindow, w)
	}
}
