package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Broadcaster delivers one message to a fixed snapshot of recipients,
// pacing sends so the Telegram API does not throttle the bot: a short
// pause after every send and a longer cool-down after each batch of 30.
// Once started a broadcast runs to completion; cancellation is only
// possible before confirmation.
type Broadcaster struct {
	notifier   Notifier
	shortPause time.Duration
	longPause  time.Duration
	batchSize  int
	sleep      func(ctx context.Context, d time.Duration)
}

func NewBroadcaster(notifier Notifier) *Broadcaster {
	return &Broadcaster{
		notifier:   notifier,
		shortPause: 2 * time.Second,
		longPause:  60 * time.Second,
		batchSize:  30,
		sleep:      sleepCtx,
	}
}

// Run walks the recipient snapshot in order. A failed send is logged,
// skipped and not counted; the loop never aborts. Returns how many sends
// succeeded and the snapshot size.
func (b *Broadcaster) Run(ctx context.Context, recipients []int64, text string) (sent, total int) {
	total = len(recipients)
	for i, userID := range recipients {
		if _, err := b.notifier.SendMessage(ctx, userID, text, nil); err != nil {
			log.Error().Int64("user_id", userID).Err(err).Msg("broadcast send")
		} else {
			sent++
		}
		// No pause after the last recipient.
		if i+1 < total {
			b.sleep(ctx, b.shortPause)
			if (i+1)%b.batchSize == 0 {
				b.sleep(ctx, b.longPause)
			}
		}
	}
	return sent, total
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
