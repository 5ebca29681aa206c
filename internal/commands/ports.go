package commands

import "context"

type Command string

const (
	Chat      Command = "chat"
	Schedule  Command = "schedule"
	Summary   Command = "summary"
	Translate Command = "translate"
)

type Match int

const (
	Exact Match = iota
	Prefix
)

// Handler отвечает на сообщение пользователя готовым текстом.
type Handler interface {
	Handle(ctx context.Context, userID, text string) string
}

type HandlerFunc func(ctx context.Context, userID, text string) string

func (f HandlerFunc) Handle(ctx context.Context, userID, text string) string {
	return f(ctx, userID, text)
}

// Static — заглушка команды с фиксированным ответом
func Static(reply string) Handler {
	return HandlerFunc(func(context.Context, string, string) string { return reply })
}

const (
	ScheduleToken  = "#行程"
	SummaryToken   = "#摘要"
	TranslateToken = "#翻譯"

	SummaryStubReply   = "（暫未串接）這裡會幫你做文章摘要"
	TranslateStubReply = "（暫未串接）這裡會幫你翻譯文字"
)
