package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// GradeEvent is broadcast after a submission has been graded.
type GradeEvent struct {
	ProviderID string    `json:"provider_id"`
	UserID     uint      `json:"user_id"`
	QuestionID uint      `json:"question_id"`
	Total      int       `json:"total_test_cases"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	IsCorrect  bool      `json:"is_correct"`
	Persisted  bool      `json:"persisted"`
	GradedAt   time.Time `json:"graded_at"`
}

// GradeEventPublisher delivers grade events to interested consumers.
type GradeEventPublisher interface {
	PublishGraded(ctx context.Context, event GradeEvent) error
}

type natsGradePublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSGradePublisher publishes grade events on subject. It returns nil when conn is nil
// so callers can skip publishing entirely.
func NewNATSGradePublisher(conn *nats.Conn, subject string) GradeEventPublisher {
	if conn == nil || subject == "" {
		return nil
	}
	return &natsGradePublisher{conn: conn, subject: subject}
}

func (p *natsGradePublisher) PublishGraded(ctx context.Context, event GradeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, payload)
}
