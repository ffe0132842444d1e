package handlers

import (
	"context"

	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

const (
	guidesCallbackPrefix = "guides:"
	guidesBasics         = "guides:basics"
	guidesCases          = "guides:cases"
	guidesAutomation     = "guides:automation"
	guidesSections       = "guides:sections"
	guidesBack           = "guides:back"
)

type guideItem struct {
	Label string
	URL   string
}

type guideSection struct {
	Title    string
	Callback string
	Items    []guideItem
}

var guideSections = []guideSection{
	{
		Title:    "Раздел 1 · Основы Telegram Ads",
		Callback: guidesBasics,
		Items: []guideItem{
			{"1️⃣ Что такое Telegram Ads и почему он не работает", "https://telegra.ph/1-post-1-razdel-10-20"},
			{"2️⃣ Как выбрать цель кампании и не сжечь бюджет", "https://telegra.ph/2-post-1-razdel-10-20"},
			{"3️⃣ Пиксель в Telegram: зачем он и как понять, что он работает", "https://telegra.ph/3-post-1-razdel-10-20"},
			{"4️⃣ Как считать результат рекламы: CTR ≠ прибыль", "https://telegra.ph/4-post-1-razdel-10-20"},
			{"5️⃣ Рекламный текст, который кликают", "https://telegra.ph/5-post-1-razdel-10-20"},
			{"6️⃣ Мини-чеклист перед запуском Ads", "https://telegra.ph/6-post-1-razdel-10-20"},
		},
	},
	{
		Title:    "Раздел 2 · Ошибки и кейсы",
		Callback: guidesCases,
		Items: []guideItem{
			{"1️⃣ ТОП-5 ошибок, из-за которых Ads не окупается", "https://telegra.ph/1-post-2-razdel-10-20"},
			{"2️⃣ Кейс: как снизить CPL с 480 ₽ до 190 ₽ — по шагам", "https://telegra.ph/2-post-2-razdel-10-20"},
			{"3️⃣ Почему CTR 15% — это не успех", "https://telegra.ph/3-post-2-razdel-10-20"},
			{"4️⃣ Факап: реклама шла, лидов нет", "https://telegra.ph/4-post-2-razdel-10-20"},
			{"5️⃣ Кейс клиента: ROI ×4 без увеличения бюджета", "https://telegra.ph/5-post-2-razdel-10-20"},
			{"6️⃣ 3 сигнала, что подрядчик тратит деньги впустую", "https://telegra.ph/6-post-2-razdel-10-20"},
		},
	},
	{
		Title:    "Раздел 3 · Автоматизация",
		Callback: guidesAutomation,
		Items: []guideItem{
			{"1️⃣ Как не тратить 2 часа в день на отчёты", "https://telegra.ph/1-post-3-razdel-10-20"},
			{"2️⃣ Боты, которые экономят бюджет (и нервы)", "https://telegra.ph/2-post-3-razdel-10-20"},
			{"3️⃣ Telegram Ads + Google Sheets: сквозная аналитика", "https://telegra.ph/3-post-3-razdel-10-20"},
			{"4️⃣ Сценарий «воронки на автопилоте»", "https://telegra.ph/4-post-3-razdel-10-20"},
			{"5️⃣ Автоматизация лидогенерации через Ads + бот", "https://telegra.ph/5-post-3-razdel-10-20"},
			{"6️⃣ Инструменты Telegram-маркетолога: must-have", "https://telegra.ph/6-post-3-razdel-10-20"},
		},
	},
}

func guidesMenuKeyboard() *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(guideSections)+1)
	for _, s := range guideSections {
		rows = append(rows, []telegram.InlineKeyboardButton{{Text: s.Title, CallbackData: s.Callback}})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{Text: "Назад в меню", CallbackData: guidesBack}})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func sectionKeyboard(s guideSection) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(s.Items)+1)
	for _, item := range s.Items {
		rows = append(rows, []telegram.InlineKeyboardButton{{Text: item.Label, URL: item.URL}})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{Text: "Назад к разделам", CallbackData: guidesSections}})
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (h *Handler) handleGuides(ctx context.Context, m *telegram.Message) {
	h.sendMessage(ctx, m.Chat.ID, guidesMenuMessage, &telegram.SendOptions{ReplyMarkup: guidesMenuKeyboard()})
}

func (h *Handler) handleGuidesCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	h.answerCallback(ctx, cb.ID, "")
	switch cb.Data {
	case guidesSections:
		h.sendMessage(ctx, cb.Message.Chat.ID, guidesMenuMessage, &telegram.SendOptions{ReplyMarkup: guidesMenuKeyboard()})
	case guidesBack:
		h.sendMessage(ctx, cb.Message.Chat.ID, backToMenuMessage, &telegram.SendOptions{ReplyMarkup: mainMenuKeyboard()})
	default:
		for _, s := range guideSections {
			if s.Callback == cb.Data {
				h.sendMessage(ctx, cb.Message.Chat.ID, s.Title, &telegram.SendOptions{ReplyMarkup: sectionKeyboard(s)})
				return
			}
		}
	}
}
