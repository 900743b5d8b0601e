package ws

import (
	"github.com/sirupsen/logrus"

	"github.com/commune-hq/commune/internal/domain"
)

// HubNotifier implements service.ActivityNotifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyActivity(act *domain.Activity) {
	evt, err := NewEvent(EventTypeActivity, &act.InstanceID, ActivityPayload{Activity: *act})
	if err != nil {
		logrus.WithError(err).Error("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastActivity(act.InstanceID, evt)
}
