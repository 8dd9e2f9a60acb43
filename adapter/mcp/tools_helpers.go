package mcp

import (
	"context"
	"errors"

	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
)

var errNoDatabase = errors.New("requires database connection")

const msgStorageFailure = "storage failure, see server logs"

// publicError keeps domain messages and hides storage details from the agent.
func (t *toolset) publicError(ctx context.Context, tool string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sharedDomain.ErrStorageFailure) {
		t.logger.ErrorContext(ctx, "mcp tool failed", "tool", tool, "error", err)
		return errors.New(msgStorageFailure)
	}
	return err
}
