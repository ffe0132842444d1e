package handlers

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tgmarketer/audit-bot/internal/config"
	"github.com/tgmarketer/audit-bot/internal/registry"
	"github.com/tgmarketer/audit-bot/internal/repository"
	"github.com/tgmarketer/audit-bot/internal/service"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

const (
	StartCmd = "/start"
	AdminCmd = "/admin"

	AuditButton   = "🔍 Бесплатный аудит"
	GuidesButton  = "📚 Гайды и материалы"
	ContactButton = "💬 Задать вопрос"
	SiteButton    = "🌐 Визитка / сайт"
)

// Handler routes inbound Telegram updates. It owns two independent
// conversation tables keyed by user ID: the intake flow anyone can enter
// and the admin flow gated to the configured operator. The same user can
// hold state in both without the flows interfering.
type Handler struct {
	cfg         *config.Config
	tgClient    *telegram.Client
	leads       *service.LeadService
	broadcaster *service.Broadcaster
	repo        repository.AuditRepository
	recipients  *registry.Recipients

	// admin handle normalized once: leading @ stripped, lowercased.
	adminUsername string

	// intake is only touched by the update loop; admin is shared with
	// the broadcast goroutine and guarded by adminMu.
	intake  map[int64]*IntakeState
	adminMu sync.Mutex
	admin   map[int64]*AdminState
}

func New(cfg *config.Config, tgClient *telegram.Client, leads *service.LeadService, broadcaster *service.Broadcaster, repo repository.AuditRepository, recipients *registry.Recipients) *Handler {
	return &Handler{
		cfg:           cfg,
		tgClient:      tgClient,
		leads:         leads,
		broadcaster:   broadcaster,
		repo:          repo,
		recipients:    recipients,
		adminUsername: strings.ToLower(strings.TrimPrefix(cfg.AdminUsername, "@")),
		intake:        map[int64]*IntakeState{},
		admin:         map[int64]*AdminState{},
	}
}

// HandleMessage processes one inbound text message.
func (h *Handler) HandleMessage(ctx context.Context, m *telegram.Message) {
	if m.From == nil {
		return
	}
	h.recipients.Register(m.From.ID, m.From.Username)

	if st, ok := h.adminState(m.From.ID); ok && m.Text != AdminCmd {
		switch st.Stage {
		case AdminStageComposing:
			h.handleBroadcastText(ctx, m, st)
			return
		case AdminStageConfirming, AdminStageSending:
			// Only the confirm/cancel buttons move this state along.
			return
		}
	}

	// Commands and the entry button restart their flows from any intake
	// state instead of being consumed as answers.
	if st, ok := h.intake[m.From.ID]; ok && m.Text != StartCmd && m.Text != AdminCmd && m.Text != AuditButton {
		h.continueIntake(ctx, m, st)
		return
	}

	switch m.Text {
	case StartCmd:
		h.handleStart(ctx, m)
	case AdminCmd:
		h.handleAdminEntry(ctx, m)
	case AuditButton:
		h.startIntake(ctx, m)
	case GuidesButton:
		h.handleGuides(ctx, m)
	case ContactButton:
		h.handleContact(ctx, m)
	case SiteButton:
		h.handleSite(ctx, m)
	default:
		log.Debug().Int64("user_id", m.From.ID).Str("text", m.Text).Msg("unhandled message")
	}
}

// HandleCallback processes one inline keyboard button press.
func (h *Handler) HandleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if cb.From == nil {
		return
	}
	h.recipients.Register(cb.From.ID, cb.From.Username)

	switch {
	case strings.HasPrefix(cb.Data, adminCallbackPrefix):
		h.handleAdminCallback(ctx, cb)
	case strings.HasPrefix(cb.Data, guidesCallbackPrefix):
		h.handleGuidesCallback(ctx, cb)
	default:
		h.answerCallback(ctx, cb.ID, "")
	}
}

// sendMessage wraps the Telegram client so a failed send is logged but
// never interrupts the flow that triggered it.
func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) int {
	msgID, err := h.tgClient.SendMessage(ctx, chatID, text, opts)
	if err != nil {
		log.Error().Int64("chat_id", chatID).Err(err).Msg("telegram send message")
	}
	return msgID
}

func (h *Handler) answerCallback(ctx context.Context, callbackID, text string) {
	if err := h.tgClient.AnswerCallbackQuery(ctx, callbackID, text, false); err != nil {
		log.Error().Err(err).Msg("answer callback query")
	}
}

func (h *Handler) handleStart(ctx context.Context, m *telegram.Message) {
	log.Info().Int64("user_id", m.From.ID).Str("username", m.From.Username).Msg("/start")
	delete(h.intake, m.From.ID)
	h.sendMessage(ctx, m.Chat.ID, welcomeMessage, &telegram.SendOptions{ReplyMarkup: mainMenuKeyboard()})
}

func (h *Handler) handleContact(ctx context.Context, m *telegram.Message) {
	h.sendMessage(ctx, m.Chat.ID, contactMessage, &telegram.SendOptions{ReplyMarkup: h.contactKeyboard()})
}

func (h *Handler) handleSite(ctx context.Context, m *telegram.Message) {
	h.sendMessage(ctx, m.Chat.ID, siteMessage, &telegram.SendOptions{DisableWebPagePreview: true})
}
