package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestMailerWithoutAddrDropsSend(t *testing.T) {
	mailer := &Mailer{From: "no-reply@greenloop.local"}
	require.NoError(t, mailer.Send("hero@example.com", "Streak at risk", "Act today!"))

	var nilMailer *Mailer
	require.NoError(t, nilMailer.Send("hero@example.com", "Streak at risk", "Act today!"))
}

func TestHandleSendEmailTaskSkipsRetryOnBadPayload(t *testing.T) {
	handler := HandleSendEmailTask(&Mailer{})
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))

	err := handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDailyPayloadAsOf(t *testing.T) {
	now := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)

	got, err := DailyPayload{}.asOf(now)
	require.NoError(t, err)
	require.Equal(t, now, got)

	got, err = DailyPayload{Date: "2026-02-27"}.asOf(now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), got)

	_, err = DailyPayload{Date: "27/02/2026"}.asOf(now)
	require.Error(t, err)
}
