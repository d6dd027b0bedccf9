package gateway

import "testing"

func intPtr(v int) *int { return &v }

func TestDecodeContentVariants(t *testing.T) {
	tests := []struct {
		name        string
		content     RawContent
		wantKind    VariantKind
		wantSummary string
		wantText    string
		wantCaption string
	}{
		{
			name:        "plain conversation",
			content:     RawContent{Conversation: "hello"},
			wantKind:    VariantText,
			wantSummary: "hello",
			wantText:    "hello",
		},
		{
			name:        "extended text folds into text",
			content:     RawContent{ExtendedText: &RawExtendedText{Text: "linked hello"}},
			wantKind:    VariantText,
			wantSummary: "linked hello",
			wantText:    "linked hello",
		},
		{
			name:        "image with caption",
			content:     RawContent{Image: &RawMedia{Caption: "x-ray"}},
			wantKind:    VariantImage,
			wantSummary: "📷 Photo",
			wantCaption: "x-ray",
		},
		{
			name:        "video",
			content:     RawContent{Video: &RawMedia{}},
			wantKind:    VariantVideo,
			wantSummary: "🎥 Video",
		},
		{
			name:        "audio",
			content:     RawContent{Audio: &RawAudio{Seconds: 12, PTT: true}},
			wantKind:    VariantAudio,
			wantSummary: "🎵 Audio",
		},
		{
			name:        "document with file name",
			content:     RawContent{Document: &RawDocument{FileName: "exam.pdf"}},
			wantKind:    VariantDocument,
			wantSummary: "📎 exam.pdf",
		},
		{
			name:        "document without file name",
			content:     RawContent{Document: &RawDocument{}},
			wantKind:    VariantDocument,
			wantSummary: "📎 Document",
		},
		{
			name:        "unrecognized payload",
			content:     RawContent{},
			wantKind:    VariantUnknown,
			wantSummary: "Unsupported message",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeContent(tt.content)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Caption != tt.wantCaption {
				t.Errorf("Caption = %q, want %q", got.Caption, tt.wantCaption)
			}
		})
	}
}

func TestDeliveryFromAck(t *testing.T) {
	tests := []struct {
		name     string
		ack      *int
		fromSelf bool
		want     DeliveryState
	}{
		{"inbound carries no delivery", intPtr(3), false, DeliveryNone},
		{"absent ack is pending", nil, true, DeliveryPending},
		{"zero is pending", intPtr(0), true, DeliveryPending},
		{"one is sent", intPtr(1), true, DeliverySent},
		{"two is delivered", intPtr(2), true, DeliveryDelivered},
		{"three is read", intPtr(3), true, DeliveryRead},
		{"out of range is unknown", intPtr(7), true, DeliveryUnknown},
		{"negative is unknown", intPtr(-1), true, DeliveryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deliveryFromAck(tt.ack, tt.fromSelf); got != tt.want {
				t.Errorf("deliveryFromAck = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	raw := RawMessage{
		Key:              RawKey{ID: "msg-1", RemoteJID: "5511987654321@s.whatsapp.net", FromMe: true},
		MessageTimestamp: 1700000000,
		Ack:              intPtr(2),
		Message:          RawContent{Conversation: "see you at 10"},
	}

	got := DecodeMessage(raw)
	if got.ID != "msg-1" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.RemoteAddress != "5511987654321@s.whatsapp.net" {
		t.Errorf("RemoteAddress = %q", got.RemoteAddress)
	}
	if !got.FromSelf {
		t.Error("FromSelf = false, want true")
	}
	if got.TimestampSeconds != 1700000000 {
		t.Errorf("TimestampSeconds = %d", got.TimestampSeconds)
	}
	if got.Content.Kind != VariantText || got.Content.Text != "see you at 10" {
		t.Errorf("Content = %+v", got.Content)
	}
	if got.Delivery != DeliveryDelivered {
		t.Errorf("Delivery = %q, want %q", got.Delivery, DeliveryDelivered)
	}
}

func TestDecodeAllPreservesOrder(t *testing.T) {
	raws := []RawMessage{
		{Key: RawKey{ID: "a"}, Message: RawContent{Conversation: "first"}},
		{Key: RawKey{ID: "b"}, Message: RawContent{Conversation: "second"}},
	}
	got := DecodeAll(raws)
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("order not preserved: [%s, %s]", got[0].ID, got[1].ID)
	}
}
