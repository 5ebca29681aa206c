package line

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// лимит LINE на один текстовый message
const maxTextRunes = 5000

type replier struct {
	api *messaging_api.MessagingApiAPI
}

func NewReplier(accessToken string, opts ...messaging_api.MessagingApiAPIOption) (Replier, error) {
	api, err := messaging_api.NewMessagingApiAPI(accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("init line messaging api: %w", err)
	}
	return &replier{api: api}, nil
}

func (r *replier) Reply(ctx context.Context, replyToken, text string) error {
	_, err := r.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: truncateRunes(text, maxTextRunes)},
		},
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
