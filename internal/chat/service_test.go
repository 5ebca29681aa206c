package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Vovarama1992/line_gemini_bot/internal/ai"
	"github.com/Vovarama1992/line_gemini_bot/internal/chatcontext"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) ai.Result
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) ai.Result {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	n := len(f.prompts)
	f.mu.Unlock()
	if f.reply != nil {
		return f.reply(prompt)
	}
	return ai.Result{Text: fmt.Sprintf("r%d", n)}
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func TestReply_FirstMessage(t *testing.T) {
	ctx := context.Background()
	store := chatcontext.NewMemoryStore(5)
	gen := &fakeGenerator{reply: func(string) ai.Result { return ai.Result{Text: "哈囉"} }}
	svc := NewService(store, gen, "", nil)

	out := svc.Reply(ctx, "U1", "hello")
	if out.Reply != "哈囉" || out.Degraded() {
		t.Fatalf("unexpected outcome: %#v", out)
	}
	if !strings.Contains(gen.prompts[0], "使用者: hello") {
		t.Fatalf("prompt misses user turn:\n%s", gen.prompts[0])
	}

	got, _ := store.Read(ctx, "U1")
	want := []string{"使用者: hello", "阿統: 哈囉"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("context = %v, want %v", got, want)
	}
}

func TestReply_SevenMessagesKeepWindow(t *testing.T) {
	ctx := context.Background()
	for _, window := range []int{5, 6} {
		store := chatcontext.NewMemoryStore(window)
		gen := &fakeGenerator{}
		svc := NewService(store, gen, "", nil)

		for i := 1; i <= 7; i++ {
			svc.Reply(ctx, "U1", fmt.Sprintf("m%d", i))
		}

		got, _ := store.Read(ctx, "U1")
		if len(got) != window {
			t.Fatalf("window=%d: len=%d", window, len(got))
		}

		// полная лента: m1 r1 m2 r2 ... m7 r7, храним хвост
		var all []string
		for i := 1; i <= 7; i++ {
			all = append(all, "使用者: "+fmt.Sprintf("m%d", i), "阿統: "+fmt.Sprintf("r%d", i))
		}
		want := all[len(all)-window:]
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("window=%d: got %v want %v", window, got, want)
		}
	}
}

func TestReply_GeneratorFailureAddsOnlyUserTurn(t *testing.T) {
	ctx := context.Background()
	store := chatcontext.NewMemoryStore(5)
	_ = store.Append(ctx, "U1", "使用者: earlier")

	gen := &fakeGenerator{reply: func(string) ai.Result {
		return ai.Result{Failure: ai.FailureQuota, Err: errors.New("429")}
	}}
	svc := NewService(store, gen, "", nil)

	out := svc.Reply(ctx, "U1", "still there?")
	if out.Reply != FallbackReply {
		t.Fatalf("expected fallback, got %q", out.Reply)
	}
	if out.Failure != ai.FailureQuota || !out.Degraded() {
		t.Fatalf("unexpected failure kind: %#v", out)
	}

	got, _ := store.Read(ctx, "U1")
	want := []string{"使用者: earlier", "使用者: still there?"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestReply_PromptCarriesPersonaAndLatest(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewService(chatcontext.NewMemoryStore(5), gen, "你是測試人格。", nil)

	svc.Reply(context.Background(), "U1", "最新一句")

	p := gen.prompts[0]
	for _, want := range []string{"你是測試人格。", "使用者: 最新一句", "現在使用者最新的訊息是：\n最新一句", "請根據上下文繼續回應。"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt misses %q:\n%s", want, p)
		}
	}
}

func TestReply_ConcurrentSameUserNoLostTurns(t *testing.T) {
	ctx := context.Background()
	store := chatcontext.NewMemoryStore(100)
	gen := &fakeGenerator{}
	svc := NewService(store, gen, "", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.Reply(ctx, "U1", fmt.Sprintf("m%d", i))
		}(i)
	}
	wg.Wait()

	got, _ := store.Read(ctx, "U1")
	if len(got) != 40 {
		t.Fatalf("expected 40 turns, got %d", len(got))
	}
	// каждая реплика пользователя сразу же следует за ответом на неё
	for i := 0; i < len(got); i += 2 {
		if !strings.HasPrefix(got[i], "使用者: ") || !strings.HasPrefix(got[i+1], "阿統: ") {
			t.Fatalf("interleaved turns at %d: %v", i, got[i:i+2])
		}
	}
	if gen.calls() != 20 {
		t.Fatalf("expected 20 generator calls, got %d", gen.calls())
	}
	if svc.locks.size() != 0 {
		t.Fatalf("key locks leaked: %d", svc.locks.size())
	}
}

func TestBuildPrompt_DefaultPersona(t *testing.T) {
	p := BuildPrompt("", []string{"使用者: a", "阿統: b"}, "a")
	if !strings.Contains(p, DefaultPersona) {
		t.Fatal("default persona missing")
	}
	if !strings.Contains(p, "使用者: a\n阿統: b") {
		t.Fatalf("history must be one turn per line:\n%s", p)
	}
}
