// Package opensearch stores enrollment events in OpenSearch for audit and
// support lookups.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CourseBridge/internal/domain/enrollment"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go"
)

var _ enrollment.EventSink = (*AuditSink)(nil)

// AuditSink writes one document per enrollment event.
type AuditSink struct {
	client *opensearch.Client
	index  string
}

func NewAuditSink(ctx context.Context, urls []string, index string) (*AuditSink, error) {
	if len(urls) == 0 {
		return nil, errors.New("no OpenSearch addresses configured")
	}

	cfg := opensearch.Config{
		Addresses: urls,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
		},
	}
	client, err := opensearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}

	sink := &AuditSink{client: client, index: index}

	if err := sink.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return sink, nil
}

func (s *AuditSink) ensureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("indices.exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"event_id":   map[string]any{"type": "keyword"},
				"user_id":    map[string]any{"type": "keyword"},
				"email":      map[string]any{"type": "keyword"},
				"course_key": map[string]any{"type": "keyword"},
				"mode":       map[string]any{"type": "keyword"},
				"created_at": map[string]any{"type": "date"},
			},
		},
		"settings": map[string]any{
			"number_of_replicas": 0,
		},
	}
	buf, _ := json.Marshal(body)
	cr, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithBody(bytes.NewReader(buf)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.create: %w", err)
	}
	defer cr.Body.Close()
	if cr.IsError() {
		return fmt.Errorf("indices.create error: %s", cr.String())
	}
	return nil
}

type enrollmentEventDoc struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CourseKey string    `json:"course_key"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordEnrollment indexes one enrollment event.
func (s *AuditSink) RecordEnrollment(ctx context.Context, ev enrollment.Event) error {
	eventID := uuid.NewString()
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := enrollmentEventDoc{
		EventID:   eventID,
		UserID:    ev.UserID.String(),
		Email:     ev.Email,
		CourseKey: ev.CourseKey,
		Mode:      string(ev.Mode),
		CreatedAt: createdAt.UTC(),
	}
	payload, _ := json.Marshal(doc)

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(payload),
		s.client.Index.WithDocumentID(eventID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}
