package commands

import (
	"context"
	"errors"

	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
)

// saveEvents writes the aggregate's pending events to the outbox using the
// request metadata of ctx, then clears them.
func saveEvents(ctx, txCtx context.Context, outboxRepo outbox.Repository, aggregate sharedDomain.AggregateRoot) error {
	events := aggregate.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := outboxRepo.SaveBatch(txCtx, msgs); err != nil {
		return sharedDomain.StorageFailure(err)
	}
	aggregate.ClearDomainEvents()
	return nil
}

// storageError classifies a repository error. Classified errors pass
// through; anything else is a storage failure.
func storageError(err error) error {
	var classified *sharedDomain.Error
	if errors.As(err, &classified) {
		return err
	}
	return sharedDomain.StorageFailure(err)
}
