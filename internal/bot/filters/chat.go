// Package filters решает, с какими чатами бот вообще разговаривает.
package filters

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// ChatFilter пропускает группы из списка разрешённых и личные сообщения.
// Пустой список — разрешены все группы.
type ChatFilter struct {
	allowed map[int64]struct{}
}

func NewChatFilter(allowedChats []int64) *ChatFilter {
	allowed := make(map[int64]struct{}, len(allowedChats))
	for _, id := range allowedChats {
		allowed[id] = struct{}{}
	}
	return &ChatFilter{allowed: allowed}
}

// CheckAccess проверяет входящее сообщение.
// Личка пропускается: обработчик сам ответит, что команда только для сообществ.
func (f *ChatFilter) CheckAccess(message *telego.Message) bool {
	if message == nil {
		log.WithField("component", "ChatFilter").Warn("nil message")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Debug("nil message.From (service/channel message?)")
		return false
	}
	return f.CheckChat(message.Chat)
}

// CheckChat проверяет чат без привязки к сообщению (нажатия кнопок).
func (f *ChatFilter) CheckChat(chat telego.Chat) bool {
	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chat.ID,
		"chat_type": chat.Type,
	})

	switch chat.Type {
	case telego.ChatTypePrivate:
		return true
	case telego.ChatTypeGroup, telego.ChatTypeSupergroup:
		if len(f.allowed) == 0 {
			return true
		}
		if _, ok := f.allowed[chat.ID]; ok {
			return true
		}
		logger.Info("deny: chat not in allowlist")
		return false
	default:
		logger.Debug("deny: unsupported chat type")
		return false
	}
}
