package gateway

// InstanceState is the gateway's view of the messaging instance.
type InstanceState struct {
	State  string `json:"state"`
	Status string `json:"status"`
}

// ConnectResult carries the connection state and, while the instance is
// unauthenticated, the base64 QR image to scan.
type ConnectResult struct {
	State   string `json:"state"`
	QRImage string `json:"qrImage,omitempty"`
}

// MessageAck is the gateway's acknowledgment of an outbound send.
type MessageAck struct {
	Key              RawKey `json:"key"`
	MessageTimestamp int64  `json:"messageTimestamp"`
	Status           string `json:"status"`
}

// RawKey identifies a message within a conversation.
type RawKey struct {
	ID        string `json:"id"`
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
}

// RawMessage is one history record exactly as the gateway ships it.
// Which content field is populated decides the payload variant.
type RawMessage struct {
	Key              RawKey     `json:"key"`
	MessageTimestamp int64      `json:"messageTimestamp"`
	Ack              *int       `json:"ack,omitempty"`
	Message          RawContent `json:"message"`
}

// RawContent holds the mutually exclusive payload variant fields.
type RawContent struct {
	Conversation string           `json:"conversation,omitempty"`
	ExtendedText *RawExtendedText `json:"extendedTextMessage,omitempty"`
	Image        *RawMedia        `json:"imageMessage,omitempty"`
	Video        *RawMedia        `json:"videoMessage,omitempty"`
	Audio        *RawAudio        `json:"audioMessage,omitempty"`
	Document     *RawDocument     `json:"documentMessage,omitempty"`
}

type RawExtendedText struct {
	Text string `json:"text"`
}

type RawMedia struct {
	Caption  string `json:"caption,omitempty"`
	Mimetype string `json:"mimetype,omitempty"`
}

type RawAudio struct {
	Mimetype string `json:"mimetype,omitempty"`
	Seconds  int    `json:"seconds,omitempty"`
	PTT      bool   `json:"ptt,omitempty"`
}

type RawDocument struct {
	FileName string `json:"fileName,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Mimetype string `json:"mimetype,omitempty"`
}

// wire envelopes

type statusResponse struct {
	Instance InstanceState `json:"instance"`
}

type connectResponse struct {
	Instance struct {
		State string `json:"state"`
	} `json:"instance"`
	Qrcode *struct {
		Base64 string `json:"base64"`
	} `json:"qrcode"`
}

type historyResponse struct {
	Messages struct {
		Records []RawMessage `json:"records"`
	} `json:"messages"`
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type historyRequest struct {
	Where historyWhere `json:"where"`
}

type historyWhere struct {
	Key historyKey `json:"key"`
}

type historyKey struct {
	RemoteJID string `json:"remoteJid"`
}
