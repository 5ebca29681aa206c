package chatcontext

import (
	"context"
	"time"
)

// Speaker — метка говорящего в строке истории
type Speaker string

const (
	SpeakerUser Speaker = "使用者"
	SpeakerBot  Speaker = "阿統"
)

// DefaultWindow — сколько последних реплик хранится на пользователя
const DefaultWindow = 5

// Turn собирает строку истории вида "<метка>: <текст>".
func Turn(speaker Speaker, text string) string {
	return string(speaker) + ": " + text
}

// Store — история диалога по userID, ограниченная последними N репликами.
type Store interface {
	// Append добавляет реплику в конец и выкидывает самые старые, пока len > N.
	Append(ctx context.Context, userID, entry string) error

	// Read возвращает копию истории; для незнакомого userID пустой срез.
	Read(ctx context.Context, userID string) ([]string, error)

	// EvictIdle удаляет истории, неактивные с момента before.
	EvictIdle(ctx context.Context, before time.Time) (int, error)
}

// Snapshot — содержимое MemoryStore для архивации
type Snapshot struct {
	Window int                   `json:"window"`
	Users  map[string]UserRecord `json:"users"`
}

type UserRecord struct {
	Turns      []string  `json:"turns"`
	LastActive time.Time `json:"last_active"`
}
