package commands

import (
	"context"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"#行程", Schedule},
		{"  #行程\n", Schedule},
		{"#行程 明天", Chat}, // schedule is exact-match only
		{"#摘要", Summary},
		{"#摘要 這篇文章", Summary},
		{"  #摘要abc", Summary},
		{"#翻譯 hello", Translate},
		{"#翻譯", Translate},
		{"hello", Chat},
		{"", Chat},
		{"   ", Chat},
		{"請幫我 #摘要", Chat},
		{"#unknown", Chat},
		{"#行", Chat},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		if Classify("#摘要#翻譯") != Summary {
			t.Fatal("priority order must pick summary first")
		}
	}
}

type recorder struct {
	calls int
	reply string
}

func (r *recorder) Handle(context.Context, string, string) string {
	r.calls++
	return r.reply
}

func TestDispatcher_RoutesByCommand(t *testing.T) {
	chat := &recorder{reply: "chat"}
	sched := &recorder{reply: "sched"}

	d := NewDispatcher(chat).
		Handle(Schedule, sched).
		Handle(Summary, Static(SummaryStubReply))

	ctx := context.Background()

	if cmd, reply := d.Dispatch(ctx, "u", "#行程"); cmd != Schedule || reply != "sched" {
		t.Fatalf("got %s %q", cmd, reply)
	}
	if cmd, reply := d.Dispatch(ctx, "u", "#摘要 xx"); cmd != Summary || reply != SummaryStubReply {
		t.Fatalf("got %s %q", cmd, reply)
	}
	if cmd, reply := d.Dispatch(ctx, "u", "hi"); cmd != Chat || reply != "chat" {
		t.Fatalf("got %s %q", cmd, reply)
	}
	if chat.calls != 1 || sched.calls != 1 {
		t.Fatalf("unexpected calls chat=%d sched=%d", chat.calls, sched.calls)
	}
}

func TestDispatcher_UnregisteredCommandFallsBackToChat(t *testing.T) {
	chat := &recorder{reply: "chat"}
	d := NewDispatcher(chat)

	cmd, reply := d.Dispatch(context.Background(), "u", "#翻譯 hola")
	if cmd != Chat || reply != "chat" || chat.calls != 1 {
		t.Fatalf("got %s %q calls=%d", cmd, reply, chat.calls)
	}
}
