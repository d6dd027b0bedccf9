package core

// EventType identifies an event emitted by the core to the shell.
type EventType string

const (
	// EventTypeConversation signals that the open conversation's state
	// (messages, loading flag, error) was replaced.
	EventTypeConversation EventType = "conversation"
	// EventTypeSendStatus reports outbound pipeline progress.
	EventTypeSendStatus EventType = "send_status"
	// EventTypeCapture reports capture session transitions.
	EventTypeCapture EventType = "capture"
	// EventTypeGatewayState reports connectivity/QR state changes.
	EventTypeGatewayState EventType = "gateway_state"
)

// AppEvent is the base interface for all core events.
type AppEvent interface {
	Type() EventType
}

// ConversationEvent carries a whole-state replacement for the open
// conversation. ScrollToLatest is set whenever the message list was
// replaced so the view lands on the newest entry.
type ConversationEvent struct {
	Address        string `json:"address"`
	PatientID      uint   `json:"patientId"`
	MessageCount   int    `json:"messageCount"`
	Loading        bool   `json:"loading"`
	Error          string `json:"error,omitempty"`
	ScrollToLatest bool   `json:"scrollToLatest"`
}

func (e ConversationEvent) Type() EventType { return EventTypeConversation }

// SendState is the lifecycle of one outbound send.
type SendState string

const (
	SendInProgress SendState = "in_progress"
	SendSucceeded  SendState = "sent"
	SendFailed     SendState = "failed"
)

// SendStatusEvent reports the progress of a text or media send.
type SendStatusEvent struct {
	CorrelationID string    `json:"correlationId"`
	Category      string    `json:"category"` // "text" or "media"
	State         SendState `json:"state"`
	Detail        string    `json:"detail,omitempty"`
}

func (e SendStatusEvent) Type() EventType { return EventTypeSendStatus }

// CaptureEvent reports audio capture session transitions.
type CaptureEvent struct {
	Recording bool   `json:"recording"`
	Error     string `json:"error,omitempty"`
}

func (e CaptureEvent) Type() EventType { return EventTypeCapture }

// GatewayStateEvent reports the gateway instance connection state. The
// QR image is a base64 payload passed straight through to the view.
type GatewayStateEvent struct {
	State   string `json:"state"`
	QRImage string `json:"qrImage,omitempty"`
}

func (e GatewayStateEvent) Type() EventType { return EventTypeGatewayState }
