package calendar

import (
	"context"
	"time"
)

// Event — одно событие календаря
type Event struct {
	Title   string
	Start   time.Time
	AllDay  bool
	RawDate string
}

// EventSource — удалённый календарь.
type EventSource interface {
	Upcoming(ctx context.Context, limit int) ([]Event, error)
}

// Lookup отдаёт готовый для пользователя текст; ошибки уже превращены в текст.
type Lookup interface {
	ListUpcoming(ctx context.Context) string
}

const (
	MsgCredentialsNotFound = "⚠️ 找不到 Google 憑證，無法查詢行程。"
	MsgNoEvents            = "近期沒有行程。"
	MsgHeader              = "📅 近期行程："
	MsgFetchFailedPrefix   = "讀取行程失敗："

	MsgServiceUnavailablePrefix = "⚠️ Google 行事曆服務無法使用："

	UntitledEvent = "(無標題)"

	DefaultMaxEvents = 5
)
