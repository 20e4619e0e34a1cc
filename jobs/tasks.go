package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeStreakRemind nudges users whose streak breaks unless they
	// act today.
	TaskTypeStreakRemind = "streak:remind"
	// TaskTypeProgressionDigest summarises daily progression activity.
	TaskTypeProgressionDigest = "progression:digest"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// DailyPayload carries the reference date for daily jobs. An empty date
// means "today" at processing time.
type DailyPayload struct {
	Date string `json:"date,omitempty"`
}

// NewStreakRemindTask constructs the streak reminder task.
func NewStreakRemindTask(payload DailyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStreakRemind, data), nil
}

// NewProgressionDigestTask constructs the daily digest task.
func NewProgressionDigestTask(payload DailyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeProgressionDigest, data), nil
}

func (p DailyPayload) asOf(now time.Time) (time.Time, error) {
	if p.Date == "" {
		return now, nil
	}
	return time.Parse("2006-01-02", p.Date)
}

// Mailer sends email over SMTP. Addr may be empty in development, in
// which case sends are dropped.
type Mailer struct {
	Addr string
	From string
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if m == nil || m.Addr == "" {
		return nil
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	return smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg))
}

// HandleSendEmailTask returns the handler for TaskTypeSendEmail tasks.
func HandleSendEmailTask(mailer *Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		return mailer.Send(payload.To, payload.Subject, payload.Body)
	}
}
