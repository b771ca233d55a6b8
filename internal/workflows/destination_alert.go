package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DestinationAlertInput is the input for the destination alert workflow.
type DestinationAlertInput struct {
	DestinationID string
	UserID        string
	DisplayName   string
}

// DestinationAlertWorkflow orchestrates resolving a newly saved destination,
// persisting its coordinate, and notifying the user that commute times are
// ready. If the notification fails, the persisted coordinate is cleared so
// the destination falls back to lazy resolution (saga compensation).
func DestinationAlertWorkflow(ctx workflow.Context, input DestinationAlertInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting destination alert workflow", "destination", input.DestinationID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Resolve the destination to a coordinate
	var coord ResolvedCoordinate
	err := workflow.ExecuteActivity(ctx, "ResolveDestination", input.DestinationID).Get(ctx, &coord)
	if err != nil {
		return err
	}

	// Step 2: Persist the coordinate
	err = workflow.ExecuteActivity(ctx, "PersistCoordinate", input.DestinationID, coord).Get(ctx, nil)
	if err != nil {
		return err
	}

	// Step 3: Tell the user their commute times are ready
	err = workflow.ExecuteActivity(ctx, "SendAlertNotification", input.UserID, input.DisplayName).Get(ctx, nil)
	if err != nil {
		logger.Warn("alert notification failed, compensating", "error", err)
		// Compensate: clear the persisted coordinate
		_ = workflow.ExecuteActivity(ctx, "ClearCoordinate", input.DestinationID).Get(ctx, nil)
		return err
	}

	logger.Info("Destination alert sent", "destination", input.DestinationID)
	return nil
}
