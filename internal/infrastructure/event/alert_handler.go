package event

import (
	"context"

	"github.com/drayage/backend/internal/domain/billing"
	"github.com/drayage/backend/internal/domain/compliance"
	"github.com/drayage/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OpsAlertHandler surfaces operational exceptions as structured warnings.
// Dispatchers watch these logs for containers that failed intake checks and
// invoices that went overdue.
type OpsAlertHandler struct {
	logger *zap.Logger
}

// NewOpsAlertHandler creates a new operational alert handler
func NewOpsAlertHandler(logger *zap.Logger) *OpsAlertHandler {
	return &OpsAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *OpsAlertHandler) EventTypes() []string {
	return []string{
		"ContainerValidationFailed",
		"InvoiceMarkedOverdue",
	}
}

// Handle logs an alert for the event
func (h *OpsAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *compliance.ContainerValidationFailedEvent:
		rules := make([]string, 0, len(e.Failures))
		for _, f := range e.Failures {
			rules = append(rules, f.Rule)
		}
		h.logger.Warn("container failed intake validation",
			zap.String("container_number", e.ContainerNumber),
			zap.String("record_id", e.RecordID.String()),
			zap.Strings("failed_rules", rules),
		)
	case *billing.InvoiceMarkedOverdueEvent:
		h.logger.Warn("invoice marked overdue",
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("balance_due", e.BalanceDue.StringFixed(2)),
			zap.Time("due_date", e.DueDate),
		)
	default:
		// Subscribed types only; anything else is a wiring mistake.
		h.logger.Debug("unexpected event type in alert handler",
			zap.String("event_type", event.EventType()),
		)
	}
	return nil
}

// Ensure OpsAlertHandler implements EventHandler
var _ shared.EventHandler = (*OpsAlertHandler)(nil)
