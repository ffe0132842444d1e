package handlers

const (
	welcomeMessage = "Привет! 👋\n" +
		"Я помогаю находить дыры в Telegram-продвижении.\n" +
		"Выбери раздел — и начнём."

	backToMenuMessage = "Возвращаю в главное меню, выбирай следующий шаг ⚡️"

	auditIntroMessage = "Окей 👌\n" +
		"Сейчас я проведу мини-аудит твоего Telegram-канала или Ads.\n" +
		"Ответь на пару вопросов — и я покажу, где сгорает бюджет."

	auditTypePrompt   = "Что ты хочешь проверить?"
	auditTypeReprompt = "Выбери вариант из списка — это поможет сфокусироваться."

	goalPrompt   = "Какая цель рекламы?"
	goalReprompt = "Цель не распознал — выбери подходящую кнопку или «Другое»."

	linkPrompt   = "Вставь ссылку на свой канал или Ads-проект."
	linkReprompt = "Ссылка нужна, чтобы я заглянул в проект. Поделись ей, пожалуйста."

	auditConfirmedMessage = "✅ Ты записан на аудит!\n" +
		"Мы свяжемся с тобой в ближайшее время."

	contactMessage = "Есть вопрос по продвижению? Пиши напрямую 👇"

	siteMessage = "🌐 Всё о услугах и кейсах — на визитке:\n" +
		"https://t.me/KamilTGMarketer"

	guidesMenuMessage = "Загляни в подборку материалов — выбери раздел 👇"

	adminMenuMessage       = "Привет! Что делаем дальше?"
	accessDeniedMessage    = "⛔ Доступ запрещён."
	noRequestsMessage      = "Нет новых заявок 👌"
	recentRequestsHeader   = "📋 Последние заявки:"
	broadcastPromptMessage = "Введите текст рассылки."
	broadcastNeedsText     = "Нужен текстовый ответ для рассылки."
	broadcastNoRecipients  = "Нет получателей для рассылки."
	broadcastCancelled     = "Рассылка отменена."
)
