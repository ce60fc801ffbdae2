package api

// Events sent over the /ws/push channel.
const (
	PushEventToken        = "token"
	PushEventNotification = "notification"
)

type PushEvent struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}
