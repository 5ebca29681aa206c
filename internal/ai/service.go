package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/line_gemini_bot/internal/error_notificator"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrEmptyCompletion — модель вернула пустой текст
var ErrEmptyCompletion = errors.New("empty completion")

type AiService struct {
	client   Client
	model    string
	timeout  time.Duration
	notifier error_notificator.Notificator
	log      *zap.SugaredLogger
}

func NewAiService(
	client Client,
	model string,
	timeout time.Duration,
	notifier error_notificator.Notificator,
	log *zap.SugaredLogger,
) *AiService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AiService{
		client:   client,
		model:    model,
		timeout:  timeout,
		notifier: notifier,
		log:      log,
	}
}

// Classify раскладывает ошибку клиента по FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, ErrEmptyCompletion) {
		return FailureEmpty
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindByStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindByStatus(reqErr.HTTPStatusCode)
	}

	// прочие клиенты отдают статус только в тексте ошибки
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status code: 429"):
		return FailureQuota
	case strings.Contains(msg, "status code: 401"), strings.Contains(msg, "status code: 403"):
		return FailureAuth
	case strings.Contains(msg, "status code: 400"), strings.Contains(msg, "status code: 404"):
		return FailureBadRequest
	case strings.Contains(msg, "status code: 5"):
		return FailureUpstream
	}
	return FailureUnknown
}

func kindByStatus(code int) FailureKind {
	switch {
	case code == http.StatusTooManyRequests:
		return FailureQuota
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return FailureAuth
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return FailureTimeout
	case code >= 500:
		return FailureUpstream
	case code >= 400:
		return FailureBadRequest
	}
	return FailureUnknown
}

// диагностика для админа
func describeFailure(kind FailureKind) string {
	switch kind {
	case FailureTimeout:
		return "Модель не ответила вовремя."
	case FailureQuota:
		return "Превышен лимит Gemini."
	case FailureAuth:
		return "Неверный API-ключ Gemini."
	case FailureBadRequest:
		return "Некорректный запрос или модель не найдена."
	case FailureUpstream:
		return "Внутренняя ошибка Gemini."
	case FailureEmpty:
		return "Модель вернула пустой ответ."
	}
	return "Неизвестная ошибка Gemini."
}

// Generate — вызов модели с таймаутом; ошибки не пробрасываются, а типизируются.
func (s *AiService) Generate(ctx context.Context, prompt string) Result {
	start := time.Now()

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.client.Complete(callCtx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		kind := Classify(err)
		s.log.Warnw("[ai] generation failed",
			"model", s.model,
			"kind", string(kind),
			"took", time.Since(start).String(),
			"error", err,
		)
		s.notifyFailure(ctx, kind, err)
		return Result{Failure: kind, Err: err}
	}

	s.log.Infow("[ai] generation done",
		"model", s.model,
		"took", time.Since(start).String(),
		"chars", len(text),
	)
	return Result{Text: text}
}

func (s *AiService) notifyFailure(ctx context.Context, kind FailureKind, err error) {
	if s.notifier == nil {
		return
	}
	details := fmt.Sprintf("Ошибка генерации\nМодель: %s\nТип: %s\n\n%s",
		s.model, kind, describeFailure(kind))
	if nerr := s.notifier.Notify(ctx, "line", err, details); nerr != nil {
		s.log.Warnw("[ai] notify failed", "error", nerr)
	}
}
