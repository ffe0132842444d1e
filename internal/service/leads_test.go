package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tgmarketer/audit-bot/internal/model"
	"github.com/tgmarketer/audit-bot/internal/scheduler"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

type fakeNotifier struct {
	direct    map[int64][]string
	contact   []string
	failSend  bool
	failSendTo bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{direct: map[int64][]string{}}
}

func (f *fakeNotifier) SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error) {
	if f.failSend {
		return 0, errors.New("send failed")
	}
	f.direct[chatID] = append(f.direct[chatID], text)
	return 1, nil
}

func (f *fakeNotifier) SendMessageTo(ctx context.Context, recipient, text string) error {
	if f.failSendTo {
		return errors.New("send failed")
	}
	f.contact = append(f.contact, text)
	return nil
}

type fakeSched struct {
	jobs []scheduler.Job
}

func (f *fakeSched) Schedule(job scheduler.Job) {
	f.jobs = append(f.jobs, job)
}

type fakeRepo struct {
	records   []*model.AuditRequest
	appendErr error
}

func (f *fakeRepo) Append(ctx context.Context, req *model.AuditRequest) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, req)
	return nil
}

func (f *fakeRepo) LoadAll(ctx context.Context) ([]*model.AuditRequest, error) {
	return f.records, nil
}

func (f *fakeRepo) RemoveAt(ctx context.Context, index int) error {
	if index < 0 || index >= len(f.records) {
		return nil
	}
	f.records = append(f.records[:index], f.records[index+1:]...)
	return nil
}

func newTestLeadService(repo *fakeRepo, notifier *fakeNotifier, sched *fakeSched, delayHours int) (*LeadService, time.Time) {
	s := NewLeadService(repo, notifier, sched, "@operator", delayHours)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, now
}

func TestLeadService_Complete(t *testing.T) {
	repo := &fakeRepo{}
	notifier := newFakeNotifier()
	sched := &fakeSched{}
	s, now := newTestLeadService(repo, notifier, sched, 48)

	req := &model.AuditRequest{
		UserID:    10,
		Username:  "@alice",
		AuditType: "Telegram Ads",
		Goal:      "Продажи",
		Link:      "https://t.me/example",
	}
	errs := s.Complete(context.Background(), req)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(repo.records) != 1 || repo.records[0].Link != "https://t.me/example" {
		t.Fatalf("request not persisted: %+v", repo.records)
	}
	if len(notifier.contact) != 1 {
		t.Fatalf("expected one operator notification, got %d", len(notifier.contact))
	}
	for _, part := range []string{"@alice", "Telegram Ads", "Продажи", "https://t.me/example"} {
		if !strings.Contains(notifier.contact[0], part) {
			t.Fatalf("notification missing %q: %s", part, notifier.contact[0])
		}
	}
	if len(sched.jobs) != 1 {
		t.Fatalf("expected one follow-up job, got %d", len(sched.jobs))
	}
	if got, want := sched.jobs[0].FireAt, now.Add(48*time.Hour); !got.Equal(want) {
		t.Fatalf("follow-up at %v, want %v", got, want)
	}
	if sched.jobs[0].UserID != 10 {
		t.Fatalf("follow-up targets wrong user: %+v", sched.jobs[0])
	}
}

func TestLeadService_FollowUpDelayNeverBelowOneHour(t *testing.T) {
	for _, hours := range []int{0, -5} {
		repo := &fakeRepo{}
		notifier := newFakeNotifier()
		sched := &fakeSched{}
		s, now := newTestLeadService(repo, notifier, sched, hours)

		s.Complete(context.Background(), &model.AuditRequest{UserID: 1})
		if got, want := sched.jobs[0].FireAt, now.Add(time.Hour); !got.Equal(want) {
			t.Fatalf("delay %d: follow-up at %v, want %v", hours, got, want)
		}
	}
}

func TestLeadService_StepFailuresAreIndependent(t *testing.T) {
	repo := &fakeRepo{appendErr: errors.New("disk full")}
	notifier := newFakeNotifier()
	sched := &fakeSched{}
	s, _ := newTestLeadService(repo, notifier, sched, 48)

	errs := s.Complete(context.Background(), &model.AuditRequest{UserID: 1})
	if len(errs) != 1 {
		t.Fatalf("expected one step error, got %v", errs)
	}
	if len(notifier.contact) != 1 {
		t.Fatalf("persist failure must not block the operator notification")
	}
	if len(sched.jobs) != 1 {
		t.Fatalf("persist failure must not block the follow-up")
	}

	repo = &fakeRepo{}
	notifier = newFakeNotifier()
	notifier.failSendTo = true
	sched = &fakeSched{}
	s, _ = newTestLeadService(repo, notifier, sched, 48)

	errs = s.Complete(context.Background(), &model.AuditRequest{UserID: 1})
	if len(errs) != 1 {
		t.Fatalf("expected one step error, got %v", errs)
	}
	if len(repo.records) != 1 || len(sched.jobs) != 1 {
		t.Fatalf("notification failure must not block the other steps")
	}
}

func TestLeadService_SendFollowUp(t *testing.T) {
	notifier := newFakeNotifier()
	s, _ := newTestLeadService(&fakeRepo{}, notifier, &fakeSched{}, 48)

	s.SendFollowUp(context.Background(), scheduler.Job{UserID: 5, Username: "@alice"})
	if len(notifier.direct[5]) != 1 || !strings.Contains(notifier.direct[5][0], "@alice") {
		t.Fatalf("unexpected follow-up delivery: %+v", notifier.direct)
	}

	// Delivery failure is logged only, never panics or retries.
	notifier.failSend = true
	s.SendFollowUp(context.Background(), scheduler.Job{UserID: 6})
	if len(notifier.direct[6]) != 0 {
		t.Fatalf("failed send should not record a delivery")
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		user *telegram.User
		want string
	}{
		{&telegram.User{Username: "alice", FirstName: "Алиса"}, "@alice"},
		{&telegram.User{FirstName: "Алиса", LastName: "Иванова"}, "Алиса Иванова"},
		{&telegram.User{FirstName: "Алиса"}, "Алиса"},
		{&telegram.User{}, "Неизвестно"},
		{nil, "Неизвестно"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.user); got != tc.want {
			t.Fatalf("DisplayName(%+v) = %q, want %q", tc.user, got, tc.want)
		}
	}
}
