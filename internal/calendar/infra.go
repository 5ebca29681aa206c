package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ErrNoCredentials — файла сервисного аккаунта нет
var ErrNoCredentials = errors.New("calendar credentials not found")

type googleSource struct {
	svc        *gcal.Service
	calendarID string
	now        func() time.Time
}

// CheckCredentials — проверка файла учётки, делается один раз при старте
func CheckCredentials(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrNoCredentials
	}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoCredentials, path)
	}
	return nil
}

func NewGoogleSource(ctx context.Context, calendarID string, opts ...option.ClientOption) (EventSource, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	opts = append(opts, option.WithScopes(gcal.CalendarReadonlyScope))

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init calendar service: %w", err)
	}
	return &googleSource{svc: svc, calendarID: calendarID, now: time.Now}, nil
}

func (g *googleSource) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	resp, err := g.svc.Events.List(g.calendarID).
		Context(ctx).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(g.now().Format(time.RFC3339)).
		MaxResults(int64(limit)).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, toEvent(item))
	}
	return out, nil
}

func toEvent(item *gcal.Event) Event {
	e := Event{Title: item.Summary}
	if item.Start == nil {
		return e
	}
	switch {
	case item.Start.DateTime != "":
		e.RawDate = item.Start.DateTime
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			e.Start = t
		}
	case item.Start.Date != "":
		e.RawDate = item.Start.Date
		e.AllDay = true
		if t, err := time.Parse("2006-01-02", item.Start.Date); err == nil {
			e.Start = t
		}
	}
	return e
}

// NewLookup собирает Lookup: без учётки — Unavailable.
func NewLookup(ctx context.Context, credentialsPath, calendarID string, svcOpts ServiceOptions) (Lookup, error) {
	if err := CheckCredentials(credentialsPath); err != nil {
		return Unavailable(), err
	}
	src, err := NewGoogleSource(ctx, calendarID, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return Broken(err), err
	}
	return NewService(src, svcOpts), nil
}
