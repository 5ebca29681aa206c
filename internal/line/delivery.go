package line

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

const service = "line_gemini_bot"

type Handler struct {
	channelSecret string
	dispatcher    Dispatcher
	replier       Replier
	log           *logger.ZapLogger
}

func NewHandler(channelSecret string, dispatcher Dispatcher, replier Replier, log *logger.ZapLogger) *Handler {
	return &Handler{
		channelSecret: channelSecret,
		dispatcher:    dispatcher,
		replier:       replier,
		log:           log,
	}
}

// POST /callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	trace := uuid.NewString()

	cb, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid signature trace=" + trace, Error: err, Service: service})
			writeDetail(w, http.StatusBadRequest, "Invalid signature")
			return
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "bad webhook payload trace=" + trace, Error: err, Service: service})
		writeDetail(w, http.StatusBadRequest, "invalid webhook payload: "+err.Error())
		return
	}

	// запрос LINE может оборваться, а ответ пользователю всё равно нужен
	ctx := context.WithoutCancel(r.Context())

	for _, msg := range Normalize(cb.Events) {
		h.handleMessage(ctx, trace, msg)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) handleMessage(ctx context.Context, trace string, msg Message) {
	cmd, reply := h.dispatcher.Dispatch(ctx, msg.UserID, msg.Text)

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("message handled trace=%s user=%s command=%s", trace, msg.UserID, cmd),
		Service: service,
	})

	if err := h.replier.Reply(ctx, msg.ReplyToken, reply); err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: fmt.Sprintf("reply failed trace=%s user=%s", trace, msg.UserID),
			Error:   err,
			Service: service,
		})
	}
}

// Normalize оставляет только текстовые сообщения с пользователем и reply token.
func Normalize(events []webhook.EventInterface) []Message {
	out := make([]Message, 0, len(events))
	for _, ev := range events {
		var e webhook.MessageEvent
		switch v := ev.(type) {
		case webhook.MessageEvent:
			e = v
		case *webhook.MessageEvent:
			e = *v
		default:
			continue
		}

		text, ok := textOf(e.Message)
		if !ok {
			continue
		}
		userID := sourceUserID(e.Source)
		if userID == "" || e.ReplyToken == "" {
			continue
		}
		out = append(out, Message{UserID: userID, ReplyToken: e.ReplyToken, Text: text})
	}
	return out
}

func textOf(m webhook.MessageContentInterface) (string, bool) {
	switch v := m.(type) {
	case webhook.TextMessageContent:
		return v.Text, true
	case *webhook.TextMessageContent:
		return v.Text, true
	}
	return "", false
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case *webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case *webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	case *webhook.RoomSource:
		return s.UserId
	}
	return ""
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
