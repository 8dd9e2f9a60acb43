package subscribers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	catalogDomain "github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
)

// ActivitySubscriber turns relayed catalog and delivery events into
// activity metrics and log lines.
type ActivitySubscriber struct {
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewActivitySubscriber creates a new activity subscriber.
func NewActivitySubscriber(metrics observability.Metrics, logger *slog.Logger) *ActivitySubscriber {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivitySubscriber{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *ActivitySubscriber) EventTypes() []string {
	return []string{
		catalogDomain.RoutingKeyMealCreated,
		domain.RoutingKeySlotCreated,
		domain.RoutingKeySlotRescheduled,
		domain.RoutingKeyMealEntryUpdated,
		domain.RoutingKeySlotStatusChanged,
	}
}

// Handle processes an event.
func (s *ActivitySubscriber) Handle(ctx context.Context, event *eventbus.Envelope) error {
	var err error
	switch event.RoutingKey {
	case catalogDomain.RoutingKeyMealCreated:
		err = s.handleMealCreated(ctx, event)
	case domain.RoutingKeySlotCreated:
		err = s.handleSlotCreated(ctx, event)
	case domain.RoutingKeySlotRescheduled:
		err = s.handleSlotRescheduled(ctx, event)
	case domain.RoutingKeyMealEntryUpdated:
		err = s.handleMealEntryUpdated(ctx, event)
	case domain.RoutingKeySlotStatusChanged:
		err = s.handleSlotStatusChanged(ctx, event)
	default:
		s.logger.WarnContext(ctx, "unknown event type", "routing_key", event.RoutingKey)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", event.RoutingKey, event.EventID, err)
	}

	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))
	return nil
}

type mealCreatedPayload struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

func (s *ActivitySubscriber) handleMealCreated(ctx context.Context, event *eventbus.Envelope) error {
	var p mealCreatedPayload
	if err := event.DecodePayload(&p); err != nil {
		return err
	}
	s.metrics.Counter(observability.MetricMealsCreated, 1)
	s.logger.InfoContext(ctx, "meal added to catalog",
		"meal_id", event.AggregateID,
		"name", p.Name,
		"calories", p.Calories,
	)
	return nil
}

type slotCreatedPayload struct {
	DeliveryType  string `json:"delivery_type"`
	ScheduledTime string `json:"scheduled_time"`
	MealCount     int    `json:"meal_count"`
}

func (s *ActivitySubscriber) handleSlotCreated(ctx context.Context, event *eventbus.Envelope) error {
	var p slotCreatedPayload
	if err := event.DecodePayload(&p); err != nil {
		return err
	}
	s.metrics.Counter(observability.MetricSlotsCreated, 1, observability.T("delivery_type", p.DeliveryType))
	s.logger.InfoContext(ctx, "delivery slot booked",
		"slot_id", event.AggregateID,
		"delivery_type", p.DeliveryType,
		"scheduled_time", p.ScheduledTime,
		"meals", p.MealCount,
	)
	return nil
}

type slotRescheduledPayload struct {
	PreviousDate  string `json:"previous_date"`
	PreviousTime  string `json:"previous_time"`
	Date          string `json:"date"`
	ScheduledTime string `json:"scheduled_time"`
	Adjusted      bool   `json:"adjusted"`
}

func (s *ActivitySubscriber) handleSlotRescheduled(ctx context.Context, event *eventbus.Envelope) error {
	var p slotRescheduledPayload
	if err := event.DecodePayload(&p); err != nil {
		return err
	}
	s.metrics.Counter(observability.MetricReschedules, 1, observability.T("adjusted", strconv.FormatBool(p.Adjusted)))
	s.logger.InfoContext(ctx, "delivery slot rescheduled",
		"slot_id", event.AggregateID,
		"from", p.PreviousDate+" "+p.PreviousTime,
		"to", p.Date+" "+p.ScheduledTime,
		"adjusted", p.Adjusted,
	)
	return nil
}

type mealEntryUpdatedPayload struct {
	EntryID string `json:"entry_id"`
	MealID  string `json:"meal_id"`
	Status  string `json:"status"`
}

func (s *ActivitySubscriber) handleMealEntryUpdated(ctx context.Context, event *eventbus.Envelope) error {
	var p mealEntryUpdatedPayload
	if err := event.DecodePayload(&p); err != nil {
		return err
	}
	s.metrics.Counter(observability.MetricMealEntryUpdates, 1, observability.T("status", p.Status))
	s.logger.InfoContext(ctx, "meal entry updated",
		"slot_id", event.AggregateID,
		"entry_id", p.EntryID,
		"meal_id", p.MealID,
		"status", p.Status,
	)
	return nil
}

type slotStatusChangedPayload struct {
	Previous string `json:"previous"`
	Status   string `json:"status"`
}

func (s *ActivitySubscriber) handleSlotStatusChanged(ctx context.Context, event *eventbus.Envelope) error {
	var p slotStatusChangedPayload
	if err := event.DecodePayload(&p); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "delivery slot status changed",
		"slot_id", event.AggregateID,
		"previous", p.Previous,
		"status", p.Status,
	)
	return nil
}
