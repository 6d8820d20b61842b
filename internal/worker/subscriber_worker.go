package worker

import (
	"github.com/spec-kit/ticket-workflow/internal/archive"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/service"
)

// StartSubscribers registers the event handlers that react to workflow
// events: channel provisioning and notifications, plus the optional
// transcript archiver. Nil services are skipped.
func StartSubscribers(dispatcher events.Dispatcher, notifications *service.NotificationService, archiver *archive.Archiver) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if archiver != nil {
		archiver.RegisterHandlers(dispatcher)
	}
}
