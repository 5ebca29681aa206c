package calendar

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ServiceOptions struct {
	MaxEvents int
	Timeout   time.Duration
	Location  *time.Location
	Log       *zap.SugaredLogger
}

type Service struct {
	source  EventSource
	limit   int
	timeout time.Duration
	loc     *time.Location
	log     *zap.SugaredLogger
}

func NewService(source EventSource, opts ServiceOptions) *Service {
	limit, loc, log := opts.MaxEvents, opts.Location, opts.Log
	if limit <= 0 || limit > DefaultMaxEvents {
		limit = DefaultMaxEvents
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{source: source, limit: limit, timeout: opts.Timeout, loc: loc, log: log}
}

func (s *Service) ListUpcoming(ctx context.Context) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	events, err := s.source.Upcoming(ctx, s.limit)
	if err != nil {
		s.log.Warnw("[calendar] list upcoming failed", "error", err)
		return MsgFetchFailedPrefix + err.Error()
	}
	if len(events) == 0 {
		return MsgNoEvents
	}
	if len(events) > s.limit {
		events = events[:s.limit]
	}

	lines := make([]string, 0, len(events)+1)
	lines = append(lines, MsgHeader)
	for _, e := range events {
		lines = append(lines, s.formatEvent(e))
	}
	return strings.Join(lines, "\n")
}

func (s *Service) formatEvent(e Event) string {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = UntitledEvent
	}

	var when string
	switch {
	case e.AllDay:
		when = e.Start.Format("2006-01-02")
	case !e.Start.IsZero():
		when = e.Start.In(s.loc).Format("2006-01-02 15:04")
	default:
		when = e.RawDate
	}
	return when + " " + title
}

// unavailable — календарь недоступен, удалённых вызовов нет
type unavailable struct {
	msg string
}

func (u unavailable) ListUpcoming(context.Context) string {
	return u.msg
}

// Unavailable — Lookup без учётки
func Unavailable() Lookup {
	return unavailable{msg: MsgCredentialsNotFound}
}

// Broken — учётка есть, но клиент не поднялся
func Broken(err error) Lookup {
	return unavailable{msg: MsgServiceUnavailablePrefix + err.Error()}
}
