package commands

import (
	"context"
	"strings"
)

type rule struct {
	cmd   Command
	token string
	match Match
}

func (r rule) matches(text string) bool {
	switch r.match {
	case Exact:
		return text == r.token
	case Prefix:
		return strings.HasPrefix(text, r.token)
	}
	return false
}

// порядок = приоритет, первое совпадение выигрывает
var defaultRules = []rule{
	{cmd: Schedule, token: ScheduleToken, match: Exact},
	{cmd: Summary, token: SummaryToken, match: Prefix},
	{cmd: Translate, token: TranslateToken, match: Prefix},
}

func classify(rules []rule, text string) Command {
	text = strings.TrimSpace(text)
	for _, r := range rules {
		if r.matches(text) {
			return r.cmd
		}
	}
	return Chat
}

// Classify — чистая функция: текст → ровно одна команда.
func Classify(text string) Command {
	return classify(defaultRules, text)
}

// Dispatcher маршрутизирует сообщение в обработчик своей команды.
type Dispatcher struct {
	rules    []rule
	handlers map[Command]Handler
	chat     Handler
}

func NewDispatcher(chat Handler) *Dispatcher {
	rules := make([]rule, len(defaultRules))
	copy(rules, defaultRules)
	return &Dispatcher{
		rules:    rules,
		handlers: make(map[Command]Handler),
		chat:     chat,
	}
}

// Handle регистрирует обработчик команды. Chat переопределяет чатовый обработчик.
func (d *Dispatcher) Handle(cmd Command, h Handler) *Dispatcher {
	if cmd == Chat {
		d.chat = h
		return d
	}
	d.handlers[cmd] = h
	return d
}

func (d *Dispatcher) Classify(text string) Command {
	return classify(d.rules, text)
}

// Dispatch возвращает команду и ответ. Команда без обработчика уходит в чат.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, text string) (Command, string) {
	cmd := d.Classify(text)
	if cmd != Chat {
		if h, ok := d.handlers[cmd]; ok {
			return cmd, h.Handle(ctx, userID, text)
		}
		cmd = Chat
	}
	return cmd, d.chat.Handle(ctx, userID, text)
}
