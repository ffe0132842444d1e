package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tgmarketer/audit-bot/internal/model"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

const (
	adminCallbackPrefix   = "admin:"
	adminMenuRequests     = "admin:requests"
	adminMenuStats        = "admin:stats"
	adminMenuBroadcast    = "admin:broadcast"
	adminMenuBack         = "admin:back"
	adminBroadcastConfirm = "admin:broadcast_confirm"
	adminBroadcastCancel  = "admin:broadcast_cancel"
	adminResolvePrefix    = "admin:resolve:"

	recentRequestsLimit = 5
)

type adminStage int

const (
	AdminStageComposing adminStage = iota + 1
	AdminStageConfirming
	AdminStageSending
)

// AdminState tracks the operator's progress through the broadcast flow.
// Recipients is snapshotted at compose time and never re-queried.
type AdminState struct {
	Stage         adminStage
	BroadcastText string
	Recipients    []int64
}

// The admin state table is touched from two goroutines: the update loop
// reads it for every inbound admin event and the broadcast goroutine
// clears its entry when the paced delivery loop finishes. All access
// goes through these helpers.
func (h *Handler) adminState(userID int64) (*AdminState, bool) {
	h.adminMu.Lock()
	defer h.adminMu.Unlock()
	st, ok := h.admin[userID]
	return st, ok
}

func (h *Handler) setAdminState(userID int64, st *AdminState) {
	h.adminMu.Lock()
	defer h.adminMu.Unlock()
	h.admin[userID] = st
}

func (h *Handler) clearAdminState(userID int64) {
	h.adminMu.Lock()
	defer h.adminMu.Unlock()
	delete(h.admin, userID)
}

// authorized implements the single-identity admin gate. An empty
// configured handle always denies, and loudly: a silently dead admin
// surface is worse than a noisy one.
func (h *Handler) authorized(username string) bool {
	if h.adminUsername == "" {
		log.Warn().Msg("ADMIN_USERNAME is not configured, denying admin access")
		return false
	}
	return strings.ToLower(username) == h.adminUsername
}

func (h *Handler) handleAdminEntry(ctx context.Context, m *telegram.Message) {
	if !h.authorized(m.From.Username) {
		h.clearAdminState(m.From.ID)
		h.sendMessage(ctx, m.Chat.ID, accessDeniedMessage, nil)
		return
	}
	h.clearAdminState(m.From.ID)
	h.sendMessage(ctx, m.Chat.ID, adminMenuMessage, &telegram.SendOptions{ReplyMarkup: adminMenuKeyboard()})
}

func (h *Handler) handleAdminCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if !h.authorized(cb.From.Username) {
		h.clearAdminState(cb.From.ID)
		if err := h.tgClient.AnswerCallbackQuery(ctx, cb.ID, accessDeniedMessage, true); err != nil {
			log.Error().Err(err).Msg("answer callback query")
		}
		return
	}

	switch {
	case cb.Data == adminMenuRequests:
		h.showRecentRequests(ctx, cb)
	case cb.Data == adminMenuStats:
		h.showStats(ctx, cb)
	case cb.Data == adminMenuBroadcast:
		h.promptBroadcast(ctx, cb)
	case cb.Data == adminBroadcastConfirm:
		h.confirmBroadcast(ctx, cb)
	case cb.Data == adminBroadcastCancel:
		h.cancelBroadcast(ctx, cb)
	case cb.Data == adminMenuBack:
		h.adminBack(ctx, cb)
	case strings.HasPrefix(cb.Data, adminResolvePrefix):
		h.resolveRequest(ctx, cb)
	default:
		h.answerCallback(ctx, cb.ID, "")
	}
}

// indexedRequest pairs a record with its position in the store at load
// time. The position is what the resolve button carries, so it is only
// meaningful until the store changes again.
type indexedRequest struct {
	Index   int
	Request *model.AuditRequest
}

func (h *Handler) recentRequests(ctx context.Context) ([]indexedRequest, error) {
	all, err := h.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	start := len(all) - recentRequestsLimit
	if start < 0 {
		start = 0
	}
	recent := make([]indexedRequest, 0, recentRequestsLimit)
	for i := len(all) - 1; i >= start; i-- {
		recent = append(recent, indexedRequest{Index: i, Request: all[i]})
	}
	return recent, nil
}

func formatTimestamp(raw string) string {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if raw == "" {
			return "Не указан"
		}
		return raw
	}
	return ts.Format("02.01 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func renderRequests(recent []indexedRequest) (string, *telegram.InlineKeyboardMarkup) {
	lines := []string{recentRequestsHeader}
	rows := [][]telegram.InlineKeyboardButton{}
	for _, entry := range recent {
		req := entry.Request
		lines = append(lines, fmt.Sprintf(
			"%s — %s\nТип: %s\nЦель: %s\nСсылка: %s",
			formatTimestamp(req.Timestamp), orDash(req.Username),
			orDash(req.AuditType), orDash(req.Goal), orDash(req.Link),
		))
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         "✅ Разобрано — " + orDash(req.Username),
			CallbackData: adminResolvePrefix + strconv.Itoa(entry.Index),
		}})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{Text: "🔙 Назад", CallbackData: adminMenuBack}})
	return strings.Join(lines, "\n\n"), &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (h *Handler) showRecentRequests(ctx context.Context, cb *telegram.CallbackQuery) {
	h.answerCallback(ctx, cb.ID, "")
	recent, err := h.recentRequests(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load audit requests")
		return
	}
	if len(recent) == 0 {
		h.sendMessage(ctx, cb.Message.Chat.ID, noRequestsMessage, &telegram.SendOptions{ReplyMarkup: adminMenuKeyboard()})
		return
	}
	text, kb := renderRequests(recent)
	h.sendMessage(ctx, cb.Message.Chat.ID, text, &telegram.SendOptions{ReplyMarkup: kb})
}

func (h *Handler) showStats(ctx context.Context, cb *telegram.CallbackQuery) {
	h.answerCallback(ctx, cb.ID, "")
	all, err := h.repo.LoadAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load audit requests")
		return
	}
	text := fmt.Sprintf(
		"📊 Статистика:\n📥 Всего заявок: %d\n📬 В очереди: %d\n👥 Пользователей для рассылки: %d",
		len(all), len(all), h.recipients.Len(),
	)
	h.sendMessage(ctx, cb.Message.Chat.ID, text, &telegram.SendOptions{ReplyMarkup: adminMenuKeyboard()})
}

func (h *Handler) promptBroadcast(ctx context.Context, cb *telegram.CallbackQuery) {
	h.answerCallback(ctx, cb.ID, "")
	h.setAdminState(cb.From.ID, &AdminState{Stage: AdminStageComposing})
	h.sendMessage(ctx, cb.Message.Chat.ID, broadcastPromptMessage, nil)
}

func (h *Handler) handleBroadcastText(ctx context.Context, m *telegram.Message, st *AdminState) {
	if !h.authorized(m.From.Username) {
		h.clearAdminState(m.From.ID)
		h.sendMessage(ctx, m.Chat.ID, accessDeniedMessage, nil)
		return
	}
	if m.Text == "" {
		h.sendMessage(ctx, m.Chat.ID, broadcastNeedsText, nil)
		return
	}
	recipients := h.recipients.IDs()
	if len(recipients) == 0 {
		h.clearAdminState(m.From.ID)
		h.sendMessage(ctx, m.Chat.ID, broadcastNoRecipients, nil)
		return
	}
	st.BroadcastText = m.Text
	st.Recipients = recipients
	st.Stage = AdminStageConfirming
	h.sendMessage(ctx, m.Chat.ID,
		fmt.Sprintf("Отправить рассылку %d пользователям?", len(recipients)),
		&telegram.SendOptions{ReplyMarkup: broadcastConfirmKeyboard()})
}

func (h *Handler) confirmBroadcast(ctx context.Context, cb *telegram.CallbackQuery) {
	st, ok := h.adminState(cb.From.ID)
	if !ok || st.Stage != AdminStageConfirming {
		h.answerCallback(ctx, cb.ID, "")
		return
	}
	st.Stage = AdminStageSending
	h.answerCallback(ctx, cb.ID, "")
	if err := h.tgClient.EditMessageReplyMarkup(ctx, cb.Message.Chat.ID, cb.Message.MessageID, nil); err != nil {
		log.Debug().Err(err).Msg("remove confirm keyboard")
	}

	// The paced loop sleeps between sends, so it runs off the update
	// loop; other conversations keep flowing while it works.
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID
	go func() {
		sent, total := h.broadcaster.Run(ctx, st.Recipients, st.BroadcastText)
		h.clearAdminState(userID)
		h.sendMessage(ctx, chatID,
			fmt.Sprintf("✅ Рассылка завершена. Успешно отправлено %d / %d.", sent, total),
			&telegram.SendOptions{ReplyMarkup: adminMenuKeyboard()})
	}()
}

func (h *Handler) cancelBroadcast(ctx context.Context, cb *telegram.CallbackQuery) {
	st, ok := h.adminState(cb.From.ID)
	if !ok || st.Stage != AdminStageConfirming {
		h.answerCallback(ctx, cb.ID, "")
		return
	}
	h.clearAdminState(cb.From.ID)
	h.answerCallback(ctx, cb.ID, "Отменено.")
	if err := h.tgClient.EditMessageReplyMarkup(ctx, cb.Message.Chat.ID, cb.Message.MessageID, nil); err != nil {
		log.Debug().Err(err).Msg("remove confirm keyboard")
	}
	h.sendMessage(ctx, cb.Message.Chat.ID, broadcastCancelled, &telegram.SendOptions{ReplyMarkup: adminMenuKeyboard()})
}

// resolveRequest removes the record behind a "resolve" button and
// redraws the list in place. A stale or garbage payload is acknowledged
// silently: the operator just sees the list refresh.
func (h *Handler) resolveRequest(ctx context.Context, cb *telegram.CallbackQuery) {
	payload := strings.TrimPrefix(cb.Data, adminResolvePrefix)
	index, err := strconv.Atoi(payload)
	if err != nil {
		h.answerCallback(ctx, cb.ID, "")
		return
	}
	if err := h.repo.RemoveAt(ctx, index); err != nil {
		log.Error().Int("index", index).Err(err).Msg("remove audit request")
		h.answerCallback(ctx, cb.ID, "")
		return
	}
	h.answerCallback(ctx, cb.ID, "Готово!")

	recent, err := h.recentRequests(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load audit requests")
		return
	}
	if len(recent) == 0 {
		if err := h.tgClient.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, noRequestsMessage, adminMenuKeyboard()); err != nil {
			log.Error().Err(err).Msg("edit requests message")
		}
		return
	}
	text, kb := renderRequests(recent)
	if err := h.tgClient.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, text, kb); err != nil {
		log.Error().Err(err).Msg("edit requests message")
	}
}

func (h *Handler) adminBack(ctx context.Context, cb *telegram.CallbackQuery) {
	h.clearAdminState(cb.From.ID)
	h.answerCallback(ctx, cb.ID, "")
	h.sendMessage(ctx, cb.Message.Chat.ID, backToMenuMessage, &telegram.SendOptions{ReplyMarkup: mainMenuKeyboard()})
}
