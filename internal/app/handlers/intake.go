package handlers

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tgmarketer/audit-bot/internal/model"
	"github.com/tgmarketer/audit-bot/internal/service"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

type intakeStage int

const (
	StageAwaitingAuditType intakeStage = iota + 1
	StageAwaitingGoal
	StageAwaitingLink
)

// IntakeState is one user's progress through the audit questionnaire.
type IntakeState struct {
	Stage     intakeStage
	AuditType string
	Goal      string
}

// startIntake (re)enters the intake flow, discarding any answers from a
// previous unfinished run.
func (h *Handler) startIntake(ctx context.Context, m *telegram.Message) {
	h.intake[m.From.ID] = &IntakeState{Stage: StageAwaitingAuditType}
	h.sendMessage(ctx, m.Chat.ID, auditIntroMessage, nil)
	h.sendMessage(ctx, m.Chat.ID, auditTypePrompt, &telegram.SendOptions{ReplyMarkup: auditTypeKeyboard()})
}

func (h *Handler) continueIntake(ctx context.Context, m *telegram.Message, st *IntakeState) {
	switch st.Stage {
	case StageAwaitingAuditType:
		if !containsOption(model.AuditTypeOptions, m.Text) {
			h.sendMessage(ctx, m.Chat.ID, auditTypeReprompt, &telegram.SendOptions{ReplyMarkup: auditTypeKeyboard()})
			return
		}
		st.AuditType = m.Text
		st.Stage = StageAwaitingGoal
		h.sendMessage(ctx, m.Chat.ID, goalPrompt, &telegram.SendOptions{ReplyMarkup: goalKeyboard()})
	case StageAwaitingGoal:
		if !containsOption(model.GoalOptions, m.Text) {
			h.sendMessage(ctx, m.Chat.ID, goalReprompt, &telegram.SendOptions{ReplyMarkup: goalKeyboard()})
			return
		}
		st.Goal = m.Text
		st.Stage = StageAwaitingLink
		h.sendMessage(ctx, m.Chat.ID, linkPrompt, &telegram.SendOptions{ReplyMarkup: removeKeyboard()})
	case StageAwaitingLink:
		link := strings.TrimSpace(m.Text)
		if link == "" {
			h.sendMessage(ctx, m.Chat.ID, linkReprompt, nil)
			return
		}
		h.completeIntake(ctx, m, st, link)
	}
}

// completeIntake runs the completion side effects and always confirms to
// the user, whatever the side effects returned.
func (h *Handler) completeIntake(ctx context.Context, m *telegram.Message, st *IntakeState, link string) {
	req := &model.AuditRequest{
		UserID:    m.From.ID,
		Username:  service.DisplayName(m.From),
		AuditType: st.AuditType,
		Goal:      st.Goal,
		Link:      link,
	}
	for _, err := range h.leads.Complete(ctx, req) {
		log.Error().Int64("user_id", m.From.ID).Err(err).Msg("intake completion side effect")
	}
	delete(h.intake, m.From.ID)
	h.sendMessage(ctx, m.Chat.ID, auditConfirmedMessage, &telegram.SendOptions{
		ReplyMarkup:           removeKeyboard(),
		DisableWebPagePreview: true,
	})
}

func containsOption(options []string, text string) bool {
	for _, o := range options {
		if o == text {
			return true
		}
	}
	return false
}
