package conversation

import (
	"Prontu/pkg/core"
	"Prontu/pkg/gateway"
	"Prontu/pkg/logging"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Send guard errors. These are precondition rejections, not gateway
// failures: nothing was transmitted.
var (
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrNoConversation   = errors.New("no conversation is open")
	ErrTextSendBusy     = errors.New("a text send is already in progress")
	ErrMediaSendBusy    = errors.New("a media send is already in progress")
	ErrCaptureActive    = errors.New("cannot send while an audio capture session is active")
	ErrGatewayNotConfig = errors.New("gateway is not configured")
)

// senderClient is the slice of the gateway client the pipeline needs.
type senderClient interface {
	SendText(ctx context.Context, cfg core.GatewayConfig, address, text string) (gateway.MessageAck, error)
	SendMedia(ctx context.Context, cfg core.GatewayConfig, address string, att core.Attachment, caption string) (gateway.MessageAck, error)
	SendFile(ctx context.Context, cfg core.GatewayConfig, address string, att core.Attachment) (gateway.MessageAck, error)
}

// Pipeline submits outbound messages for the open conversation. Text
// and media sends carry independent in-flight flags: one of each may be
// concurrent, two of the same category may not. No optimistic message
// is ever inserted into the conversation; the list is only updated by
// the synchronizer's reconciliation fetch.
type Pipeline struct {
	client   senderClient
	configs  core.ConfigProvider
	notifier core.Notifier
	emit     func(core.AppEvent)
	syncer   *Synchronizer
	logger   *logging.ComponentLogger

	// maxImageEdge bounds outbound image dimensions; larger images are
	// downscaled before upload.
	maxImageEdge int

	// One mutex guards both the in-flight flags and the recording flag
	// so send-vs-capture exclusion is decided in a single critical
	// section.
	mu            sync.Mutex
	textInFlight  bool
	mediaInFlight bool
	recording     bool
}

// NewPipeline creates the outbound pipeline. emit may be nil.
func NewPipeline(client senderClient, configs core.ConfigProvider, notifier core.Notifier, syncer *Synchronizer, emit func(core.AppEvent), maxImageEdge int) *Pipeline {
	logger, err := logging.GetLogger("conversation", "outbound")
	if err != nil {
		fmt.Printf("conversation: WARNING - failed to initialize logger: %v\n", err)
	}
	if emit == nil {
		emit = func(core.AppEvent) {}
	}
	if notifier == nil {
		notifier = core.NopNotifier{}
	}
	return &Pipeline{
		client:       client,
		configs:      configs,
		notifier:     notifier,
		emit:         emit,
		syncer:       syncer,
		logger:       logger,
		maxImageEdge: maxImageEdge,
	}
}

// Busy reports whether any send is in flight.
func (p *Pipeline) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textInFlight || p.mediaInFlight
}

// Recording reports whether a capture session holds the exclusion flag.
func (p *Pipeline) Recording() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recording
}

// acquireRecording claims the capture exclusion flag. The check against
// in-flight sends and the claim happen under one lock, so a send and a
// recording can never both pass their guards.
func (p *Pipeline) acquireRecording() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.textInFlight || p.mediaInFlight {
		return ErrSendInProgress
	}
	if p.recording {
		return ErrAlreadyRecording
	}
	p.recording = true
	return nil
}

// endRecording clears the capture exclusion flag and reports whether it
// was held.
func (p *Pipeline) endRecording() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	held := p.recording
	p.recording = false
	return held
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Logf(format, args...)
	}
}

// SendText submits a text message. On failure the caller keeps the
// typed input; on success the input is cleared and a reconciliation
// fetch is scheduled.
func (p *Pipeline) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	address, cfg, err := p.sendContext()
	if err != nil {
		p.notifier.Notify(core.NotifyError, "Cannot send message", err.Error())
		return err
	}

	p.mu.Lock()
	if p.textInFlight {
		p.mu.Unlock()
		return ErrTextSendBusy
	}
	if p.recording {
		p.mu.Unlock()
		return ErrCaptureActive
	}
	p.textInFlight = true
	p.mu.Unlock()

	// The in-flight flag must clear on every path so the compose box
	// never stays disabled.
	defer func() {
		p.mu.Lock()
		p.textInFlight = false
		p.mu.Unlock()
	}()

	correlationID := uuid.NewString()
	p.notifier.Notify(core.NotifyLoading, "Sending message", "")
	p.emit(core.SendStatusEvent{CorrelationID: correlationID, Category: "text", State: core.SendInProgress})

	ack, err := p.client.SendText(ctx, cfg, address, text)
	if err != nil {
		detail := errorDetail(err)
		p.logf("sendText to %s failed: %v", address, err)
		p.notifier.Notify(core.NotifyError, "Message not sent", detail)
		p.emit(core.SendStatusEvent{CorrelationID: correlationID, Category: "text", State: core.SendFailed, Detail: detail})
		return err
	}

	p.logf("sendText to %s acknowledged as %s", address, ack.Key.ID)
	p.notifier.Notify(core.NotifySuccess, "Message sent", "")
	p.emit(core.SendStatusEvent{CorrelationID: correlationID, Category: "text", State: core.SendSucceeded})
	p.syncer.ScheduleReconcile()
	return nil
}

// SendAttachment submits a media or document attachment. Image, video
// and audio go through the media endpoint family; everything else goes
// through the document endpoint family.
func (p *Pipeline) SendAttachment(ctx context.Context, att core.Attachment, caption string) error {
	if len(att.Data) == 0 {
		return ErrEmptyMessage
	}
	if att.Category == "" {
		att.Category = core.CategoryForMime(att.MimeType)
	}

	address, cfg, err := p.sendContext()
	if err != nil {
		p.notifier.Notify(core.NotifyError, "Cannot send file", err.Error())
		return err
	}

	p.mu.Lock()
	if p.mediaInFlight {
		p.mu.Unlock()
		return ErrMediaSendBusy
	}
	if p.recording {
		p.mu.Unlock()
		return ErrCaptureActive
	}
	p.mediaInFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.mediaInFlight = false
		p.mu.Unlock()
	}()

	if att.Category == core.MediaImage {
		att = p.downscaleImage(att)
	}

	correlationID := uuid.NewString()
	p.notifier.Notify(core.NotifyLoading, "Sending file", att.FileName)
	p.emit(core.SendStatusEvent{CorrelationID: correlationID, Category: "media", State: core.SendInProgress})

	var ack gateway.MessageAck
	switch att.Category {
	case core.MediaImage, core.MediaVideo, core.MediaAudio:
		ack, err = p.client.SendMedia(ctx, cfg, address, att, caption)
	default:
		ack, err = p.client.SendFile(ctx, cfg, address, att)
	}
	if err != nil {
		detail := errorDetail(err)
		p.logf("send %s %q to %s failed: %v", att.Category, att.FileName, address, err)
		p.notifier.Notify(core.NotifyError, "File not sent", detail)
		p.emit(core.SendStatusEvent{CorrelationID: correlationID, Category: "media", State: core.SendFailed, Detail: detail})
		return err
	}

	p.logf("send %s %q to %s acknowledged as %s", att.Category, att.FileName, address, ack.Key.ID)
	p.notifier.Notify(core.NotifySuccess, "File sent", att.FileName)
	p.emit(core.SendStatusEvent{CorrelationID: correlationID, Category: "media", State: core.SendSucceeded})
	p.syncer.ScheduleReconcile()
	return nil
}

// sendContext resolves the preconditions shared by every send: an open
// conversation with a valid address and a complete gateway config.
func (p *Pipeline) sendContext() (string, core.GatewayConfig, error) {
	address := p.syncer.Address()
	if address == "" {
		return "", core.GatewayConfig{}, ErrNoConversation
	}
	cfg, err := p.configs.GatewayConfig()
	if err != nil || !cfg.Complete() {
		return "", core.GatewayConfig{}, ErrGatewayNotConfig
	}
	return address, cfg, nil
}
