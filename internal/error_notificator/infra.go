package error_notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewInfra(bot *tgbotapi.BotAPI, chatID int64) *Infra {
	return &Infra{bot: bot, chatID: chatID}
}

// NewTelegramInfra — бот для алертов по токену
func NewTelegramInfra(token string, chatID int64) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init alert bot: %w", err)
	}
	return NewInfra(bot, chatID), nil
}

func (i *Infra) Notify(ctx context.Context, source string, err error, details string) error {
	if i.bot == nil || i.chatID == 0 {
		log.Printf("[error_notificator] alert bot not configured, source=%s", source)
		return fmt.Errorf("alert bot not configured")
	}

	text := fmt.Sprintf(
		"❗ Ошибка в боте (%s)\n\nОшибка: %v\n\nДетали: %s",
		source,
		err,
		details,
	)

	_, sendErr := i.bot.Send(tgbotapi.NewMessage(i.chatID, text))
	if sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}

	return nil
}
