package chat

import "strings"

// DefaultPersona — характер бота по умолчанию
const DefaultPersona = `你是阿統，一個有個性的聊天機器人。雖然不喜歡做事，但通常很心軟，會幫我做摘要、解程式，也會聊天。
若用戶沒有特別指令，就用你的個性回應。`

// BuildPrompt собирает единый промпт: персона, история по строке на реплику, последнее сообщение.
func BuildPrompt(persona string, history []string, latest string) string {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(persona)
	b.WriteString("\n以下是最近的對話紀錄（含使用者與阿統）：\n")
	b.WriteString(strings.Join(history, "\n"))
	b.WriteString("\n\n現在使用者最新的訊息是：\n")
	b.WriteString(latest)
	b.WriteString("\n\n請根據上下文繼續回應。\n")
	return b.String()
}
