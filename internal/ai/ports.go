package ai

import "context"

// Client — низкоуровневый вызов модели: промпт → текст.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// FailureKind — тип сбоя генерации
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureTimeout    FailureKind = "timeout"
	FailureQuota      FailureKind = "quota"
	FailureAuth       FailureKind = "auth"
	FailureBadRequest FailureKind = "bad_request"
	FailureUpstream   FailureKind = "upstream"
	FailureEmpty      FailureKind = "empty"
	FailureUnknown    FailureKind = "unknown"
)

// Result — ответ модели либо типизированный сбой.
type Result struct {
	Text    string
	Failure FailureKind
	Err     error
}

func (r Result) OK() bool {
	return r.Failure == FailureNone
}

// Generator — то, чем пользуется оркестратор ответов.
type Generator interface {
	Generate(ctx context.Context, prompt string) Result
}
