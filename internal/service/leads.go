package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tgmarketer/audit-bot/internal/model"
	"github.com/tgmarketer/audit-bot/internal/repository"
	"github.com/tgmarketer/audit-bot/internal/scheduler"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

// unknownName is stored when the user exposes neither a handle nor a name.
const unknownName = "Неизвестно"

// Notifier is the part of the Telegram client the lead service uses to
// reach individual users and the operator contact.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error)
	SendMessageTo(ctx context.Context, recipient, text string) error
}

// JobScheduler enqueues a single delayed follow-up.
type JobScheduler interface {
	Schedule(job scheduler.Job)
}

// LeadService finalizes a completed intake: it persists the request,
// notifies the operator and schedules the follow-up message. The three
// steps are independent; one failing never blocks the others.
type LeadService struct {
	repo         repository.AuditRepository
	notifier     Notifier
	sched        JobScheduler
	adminContact string
	delayHours   int
	now          func() time.Time
}

func NewLeadService(repo repository.AuditRepository, notifier Notifier, sched JobScheduler, adminContact string, delayHours int) *LeadService {
	return &LeadService{
		repo:         repo,
		notifier:     notifier,
		sched:        sched,
		adminContact: adminContact,
		delayHours:   delayHours,
		now:          time.Now,
	}
}

// DisplayName resolves how the requester is shown to the operator:
// @handle when public, else the profile name, else a fixed sentinel.
func DisplayName(u *telegram.User) string {
	if u == nil {
		return unknownName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return unknownName
}

// Complete runs the three completion side effects in order and returns
// every step error for the caller to log. The user-facing confirmation is
// the caller's job and must happen regardless of what is returned here.
func (s *LeadService) Complete(ctx context.Context, req *model.AuditRequest) []error {
	var errs []error

	if err := s.repo.Append(ctx, req); err != nil {
		errs = append(errs, fmt.Errorf("save audit request: %w", err))
	}

	notification := fmt.Sprintf(
		"🆕 Новая заявка на аудит!\nПользователь: %s\nТип: %s\nЦель: %s\nСсылка: %s",
		req.Username, req.AuditType, req.Goal, req.Link,
	)
	if err := s.notifier.SendMessageTo(ctx, s.adminContact, notification); err != nil {
		errs = append(errs, fmt.Errorf("notify operator: %w", err))
	}

	s.sched.Schedule(scheduler.Job{
		FireAt:   s.now().Add(s.followUpDelay()),
		UserID:   req.UserID,
		Username: req.Username,
	})

	return errs
}

// followUpDelay clamps the configured delay so a follow-up never fires
// sooner than one hour after intake.
func (s *LeadService) followUpDelay() time.Duration {
	hours := s.delayHours
	if hours < 1 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}

// SendFollowUp delivers the delayed follow-up message. It is wired as the
// scheduler's SendFunc; failures are logged and never retried.
func (s *LeadService) SendFollowUp(ctx context.Context, job scheduler.Job) {
	text := fmt.Sprintf(
		"Хей 👋 %s\nТы уже посмотрел рекомендации по своему каналу?\nЕсли нет — самое время 📎\n\nХочешь, помогу уточнить, где именно можно улучшить кампанию?",
		job.Username,
	)
	if _, err := s.notifier.SendMessage(ctx, job.UserID, text, nil); err != nil {
		log.Error().Int64("user_id", job.UserID).Err(err).Msg("send follow-up")
	}
}
