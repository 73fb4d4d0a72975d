package worker

import (
	"github.com/spec-kit/voicedesk/internal/events"
	"github.com/spec-kit/voicedesk/internal/service"
)

// StartNotificationWorker subscribes the notification service to pipeline events.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.Register(dispatcher)
}
