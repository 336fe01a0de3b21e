package domain

import "time"

// VisitorEvent is one best-effort analytics row (page view, scroll depth,
// form interaction). Losing one is acceptable; blocking a customer is not.
type VisitorEvent struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"sessionId,omitempty"`
	EventType   string         `json:"eventType"`
	PageURL     string         `json:"pageUrl,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserAgent   string         `json:"-"`
	ReferrerURL string         `json:"-"`
	IPAddress   string         `json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
}
