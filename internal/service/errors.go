package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_rest/internal/access"
	"github.com/Skotchmaster/store_rest/internal/mykafka"
	"github.com/Skotchmaster/store_rest/pkg/logging"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrForbidden  = errors.New("forbidden")  // 403
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func authorize(p access.Policy, pr access.Principal, a access.Action, t access.Target) error {
	switch p.Decide(pr, a, t) {
	case access.Allow:
		return nil
	case access.NotFound:
		return fmt.Errorf("%w: %s %d", ErrNotFound, t.Kind(), t.ID())
	default:
		return fmt.Errorf("%w: %s %s", ErrForbidden, a, t.Kind())
	}
}

// found turns a missing row into a nil entity so the access policy can decide
// what the caller gets to learn about it.
func found[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// publish sends a domain event after a committed write. Delivery problems are
// logged and never fail the request.
func publish(ctx context.Context, p mykafka.Publisher, topic, typ string, id uint, payload any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, mykafka.NewEvent(typ, id, payload)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", typ, "entity_id", id, "error", err)
	}
}
