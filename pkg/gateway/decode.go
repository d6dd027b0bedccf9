package gateway

// Decoding maps a raw gateway record to a display-ready message. The
// payload variant is decided exactly once here; nothing downstream
// re-inspects the raw content fields. Decoding never fails: a record
// with no recognized variant produces the unsupported placeholder.

// VariantKind tags the decoded payload variant.
type VariantKind string

const (
	VariantText     VariantKind = "text"
	VariantImage    VariantKind = "image"
	VariantVideo    VariantKind = "video"
	VariantAudio    VariantKind = "audio"
	VariantDocument VariantKind = "document"
	VariantUnknown  VariantKind = "unknown"
)

// DeliveryState is the gateway-reported progress of a sent message.
// Inbound messages carry DeliveryNone: ticks are only rendered for
// self-authored messages.
type DeliveryState string

const (
	DeliveryNone      DeliveryState = ""
	DeliveryPending   DeliveryState = "pending"
	DeliverySent      DeliveryState = "sent"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryRead      DeliveryState = "read"
	DeliveryUnknown   DeliveryState = "unknown"
)

// Content is the decoded payload: a short summary for the conversation
// list plus the full text or caption where the variant carries one.
type Content struct {
	Kind     VariantKind `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Caption  string      `json:"caption,omitempty"`
	Summary  string      `json:"summary"`
	FileName string      `json:"fileName,omitempty"`
}

// Message is one decoded, display-ready conversation entry. Identity is
// ID; it must be unique within one conversation's message set.
type Message struct {
	ID               string        `json:"id"`
	RemoteAddress    string        `json:"remoteAddress"`
	FromSelf         bool          `json:"fromSelf"`
	TimestampSeconds int64         `json:"timestampSeconds"`
	Content          Content       `json:"content"`
	Delivery         DeliveryState `json:"delivery"`
}

// DecodeMessage converts one raw record. It never returns an error.
func DecodeMessage(raw RawMessage) Message {
	return Message{
		ID:               raw.Key.ID,
		RemoteAddress:    raw.Key.RemoteJID,
		FromSelf:         raw.Key.FromMe,
		TimestampSeconds: raw.MessageTimestamp,
		Content:          decodeContent(raw.Message),
		Delivery:         deliveryFromAck(raw.Ack, raw.Key.FromMe),
	}
}

// DecodeAll converts a slice of raw records, preserving order.
func DecodeAll(raws []RawMessage) []Message {
	messages := make([]Message, 0, len(raws))
	for _, raw := range raws {
		messages = append(messages, DecodeMessage(raw))
	}
	return messages
}

func decodeContent(raw RawContent) Content {
	switch {
	case raw.Conversation != "":
		return Content{Kind: VariantText, Text: raw.Conversation, Summary: raw.Conversation}
	case raw.ExtendedText != nil:
		return Content{Kind: VariantText, Text: raw.ExtendedText.Text, Summary: raw.ExtendedText.Text}
	case raw.Image != nil:
		return Content{Kind: VariantImage, Caption: raw.Image.Caption, Summary: "📷 Photo"}
	case raw.Video != nil:
		return Content{Kind: VariantVideo, Caption: raw.Video.Caption, Summary: "🎥 Video"}
	case raw.Audio != nil:
		return Content{Kind: VariantAudio, Summary: "🎵 Audio"}
	case raw.Document != nil:
		summary := "📎 Document"
		if raw.Document.FileName != "" {
			summary = "📎 " + raw.Document.FileName
		}
		return Content{
			Kind:     VariantDocument,
			Caption:  raw.Document.Caption,
			FileName: raw.Document.FileName,
			Summary:  summary,
		}
	default:
		return Content{Kind: VariantUnknown, Summary: "Unsupported message"}
	}
}

// deliveryFromAck maps the gateway's numeric acknowledgment level.
// Levels are not assumed monotonic: each fetch replaces the whole
// message set, so a regressed ack simply renders as reported.
func deliveryFromAck(ack *int, fromSelf bool) DeliveryState {
	if !fromSelf {
		return DeliveryNone
	}
	if ack == nil {
		return DeliveryPending
	}
	switch *ack {
	case 0:
		return DeliveryPending
	case 1:
		return DeliverySent
	case 2:
		return DeliveryDelivered
	case 3:
		return DeliveryRead
	default:
		return DeliveryUnknown
	}
}
