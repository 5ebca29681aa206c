package line

import (
	"context"

	"github.com/Vovarama1992/line_gemini_bot/internal/commands"
)

// Message — нормализованное входящее текстовое сообщение
type Message struct {
	UserID     string
	ReplyToken string
	Text       string
}

// Replier отправляет ответ по одноразовому reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Dispatcher — маршрутизация сообщения в команду или чат
type Dispatcher interface {
	Dispatch(ctx context.Context, userID, text string) (commands.Command, string)
}
