package usecase

import (
	"strings"
	"unicode/utf8"

	"madhughor-backend/internal/domain"

	"github.com/sirupsen/logrus"
)

type EventRepo interface {
	InsertEvent(e *domain.VisitorEvent) error
}

type TrackPayload struct {
	SessionID   string         `json:"session_id"`
	EventType   string         `json:"event_type"`
	PageURL     string         `json:"page_url"`
	Metadata    map[string]any `json:"metadata"`
	UserAgent   string         `json:"user_agent"`
	ReferrerURL string         `json:"referrer_url"`
}

// EventService records visitor analytics. A missing event type is the
// only hard reject; a failed insert is logged and swallowed so tracking
// can never break the page that called it.
type EventService struct {
	Repo EventRepo
	Log  *logrus.Logger
}

func (s *EventService) Track(p *TrackPayload, clientIP string) error {
	eventType := strings.TrimSpace(p.EventType)
	if eventType == "" || utf8.RuneCountInString(eventType) > 100 {
		return ErrInvalidField("event_type")
	}
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	e := &domain.VisitorEvent{
		SessionID:   truncate(p.SessionID, 100),
		EventType:   eventType,
		PageURL:     truncate(p.PageURL, 2000),
		Metadata:    metadata,
		UserAgent:   truncate(p.UserAgent, 500),
		ReferrerURL: truncate(p.ReferrerURL, 2000),
		IPAddress:   clientIP,
	}
	if err := s.Repo.InsertEvent(e); err != nil {
		s.logger().WithError(err).WithField("event_type", eventType).Warn("analytics insert failed")
	}
	return nil
}

func (s *EventService) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}
