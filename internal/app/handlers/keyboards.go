package handlers

import (
	"strings"

	"github.com/tgmarketer/audit-bot/internal/model"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

// optionsKeyboard builds a one-column reply keyboard from the given labels.
func optionsKeyboard(options []string) telegram.ReplyKeyboardMarkup {
	rows := make([][]telegram.KeyboardButton, len(options))
	for i, o := range options {
		rows[i] = []telegram.KeyboardButton{{Text: o}}
	}
	return telegram.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

func mainMenuKeyboard() telegram.ReplyKeyboardMarkup {
	kb := optionsKeyboard([]string{AuditButton, GuidesButton, ContactButton, SiteButton})
	kb.InputFieldPlaceholder = "Выбери раздел"
	return kb
}

func auditTypeKeyboard() telegram.ReplyKeyboardMarkup {
	return optionsKeyboard(model.AuditTypeOptions)
}

func goalKeyboard() telegram.ReplyKeyboardMarkup {
	return optionsKeyboard(model.GoalOptions)
}

func removeKeyboard() telegram.ReplyKeyboardRemove {
	return telegram.ReplyKeyboardRemove{RemoveKeyboard: true}
}

func adminMenuKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: "📋 Заявки", CallbackData: adminMenuRequests}},
		{{Text: "📊 Статистика", CallbackData: adminMenuStats}},
		{{Text: "📢 Рассылка", CallbackData: adminMenuBroadcast}},
		{{Text: "🔙 Назад", CallbackData: adminMenuBack}},
	}}
}

func (h *Handler) contactKeyboard() *telegram.InlineKeyboardMarkup {
	handle := strings.TrimPrefix(h.cfg.AdminContact, "@")
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: "💬 Написать", URL: "https://t.me/" + handle}},
	}}
}

func broadcastConfirmKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{
			{Text: "✅ Отправить", CallbackData: adminBroadcastConfirm},
			{Text: "❌ Отменить", CallbackData: adminBroadcastCancel},
		},
	}}
}
