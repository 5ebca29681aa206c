package chat

import (
	"context"
	"time"

	"github.com/Vovarama1992/line_gemini_bot/internal/ai"
	"github.com/Vovarama1992/line_gemini_bot/internal/chatcontext"
	"go.uber.org/zap"
)

// FallbackReply — ответ, когда модель недоступна
const FallbackReply = "目前無法使用 Gemini，請稍後再試。"

// Outcome — результат обмена репликами
type Outcome struct {
	Reply   string
	Failure ai.FailureKind
}

func (o Outcome) Degraded() bool {
	return o.Failure != ai.FailureNone
}

type Service struct {
	store     chatcontext.Store
	generator ai.Generator
	persona   string
	locks     *keyLock
	log       *zap.SugaredLogger
}

func NewService(store chatcontext.Store, generator ai.Generator, persona string, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		store:     store,
		generator: generator,
		persona:   persona,
		locks:     newKeyLock(),
		log:       log,
	}
}

// Reply — свободный чат. Весь обмен идёт под локом пользователя,
// поэтому параллельные сообщения одного userID не теряют реплики.
func (s *Service) Reply(ctx context.Context, userID, text string) Outcome {
	unlock := s.locks.Lock(userID)
	defer unlock()

	start := time.Now()

	// 1) реплика пользователя
	if err := s.store.Append(ctx, userID, chatcontext.Turn(chatcontext.SpeakerUser, text)); err != nil {
		s.log.Errorw("[chat] append user turn failed", "user", userID, "error", err)
	}

	// 2) история
	history, err := s.store.Read(ctx, userID)
	if err != nil {
		s.log.Errorw("[chat] read context failed", "user", userID, "error", err)
		history = []string{chatcontext.Turn(chatcontext.SpeakerUser, text)}
	}

	// 3) модель
	res := s.generator.Generate(ctx, BuildPrompt(s.persona, history, text))
	if !res.OK() {
		s.log.Warnw("[chat] fallback reply",
			"user", userID,
			"kind", string(res.Failure),
			"took", time.Since(start).String(),
		)
		return Outcome{Reply: FallbackReply, Failure: res.Failure}
	}

	// 4) ответ бота в историю
	if err := s.store.Append(ctx, userID, chatcontext.Turn(chatcontext.SpeakerBot, res.Text)); err != nil {
		s.log.Errorw("[chat] append bot turn failed", "user", userID, "error", err)
	}

	s.log.Infow("[chat] reply done",
		"user", userID,
		"turns", len(history),
		"took", time.Since(start).String(),
	)
	return Outcome{Reply: res.Text}
}

// Handle — обработчик чата для диспетчера команд
func (s *Service) Handle(ctx context.Context, userID, text string) string {
	return s.Reply(ctx, userID, text).Reply
}
