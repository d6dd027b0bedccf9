package conversation

import (
	"Prontu/pkg/audio"
	"Prontu/pkg/core"
	"Prontu/pkg/logging"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Capture session guard errors.
var (
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNotRecording     = errors.New("no recording is in progress")
	ErrSendInProgress   = errors.New("cannot record while a send is in progress")
)

// CaptureManager owns the single audio capture session. At most one
// recording exists at a time; the recording-vs-send exclusion flag
// itself lives in the pipeline so both sides decide under one lock. A
// stopped recording is finalized to WAV and handed to the outbound
// pipeline as a voice attachment.
type CaptureManager struct {
	recorder  audio.Recorder
	pipeline  *Pipeline
	addressFn func() string
	notifier  core.Notifier
	emit      func(core.AppEvent)
	logger    *logging.ComponentLogger

	mu     sync.Mutex
	chunks [][]byte
}

// NewCaptureManager creates the capture session manager. addressFn
// reports the open conversation's address; recording is refused when it
// returns "". emit may be nil.
func NewCaptureManager(recorder audio.Recorder, pipeline *Pipeline, addressFn func() string, notifier core.Notifier, emit func(core.AppEvent)) *CaptureManager {
	logger, err := logging.GetLogger("conversation", "capture")
	if err != nil {
		fmt.Printf("conversation: WARNING - failed to initialize logger: %v\n", err)
	}
	if emit == nil {
		emit = func(core.AppEvent) {}
	}
	if notifier == nil {
		notifier = core.NopNotifier{}
	}
	return &CaptureManager{
		recorder:  recorder,
		pipeline:  pipeline,
		addressFn: addressFn,
		notifier:  notifier,
		emit:      emit,
		logger:    logger,
	}
}

func (m *CaptureManager) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Logf(format, args...)
	}
}

// Active reports whether a capture session holds the device.
func (m *CaptureManager) Active() bool {
	return m.pipeline.Recording()
}

// StartRecording opens the capture device and begins accumulating
// audio. It refuses to start while another recording, an outbound
// send, or no conversation is in place.
func (m *CaptureManager) StartRecording() error {
	if m.addressFn() == "" {
		m.notifier.Notify(core.NotifyError, "Cannot record", "no conversation is open")
		return ErrNoConversation
	}

	if err := m.pipeline.acquireRecording(); err != nil {
		if errors.Is(err, ErrSendInProgress) {
			m.notifier.Notify(core.NotifyError, "Cannot record", "a send is in progress")
		}
		return err
	}

	m.mu.Lock()
	m.chunks = nil
	m.mu.Unlock()

	if err := m.recorder.Start(m.appendChunk); err != nil {
		m.pipeline.endRecording()
		m.logf("capture start failed: %v", err)
		if errors.Is(err, audio.ErrDeviceUnavailable) {
			m.notifier.Notify(core.NotifyError, "Microphone unavailable",
				"no capture device was found; check that a microphone is connected and permitted")
		} else {
			m.notifier.Notify(core.NotifyError, "Recording failed", err.Error())
		}
		m.emit(core.CaptureEvent{Recording: false, Error: err.Error()})
		return err
	}

	m.logf("capture started for %s", m.addressFn())
	m.emit(core.CaptureEvent{Recording: true})
	return nil
}

// StopRecording releases the device, finalizes the accumulated audio
// to WAV and submits it through the outbound pipeline. The device is
// released even when finalization or the send fails.
func (m *CaptureManager) StopRecording(ctx context.Context) error {
	if !m.pipeline.endRecording() {
		return ErrNotRecording
	}

	m.mu.Lock()
	chunks := m.chunks
	m.chunks = nil
	m.mu.Unlock()

	stopErr := m.recorder.Stop()
	m.emit(core.CaptureEvent{Recording: false})
	if stopErr != nil {
		m.logf("capture stop failed: %v", stopErr)
		m.notifier.Notify(core.NotifyError, "Recording failed", stopErr.Error())
		return stopErr
	}

	format := m.recorder.Format()
	data, err := audio.EncodeWAV(chunks, format)
	if err != nil {
		m.logf("wav finalization failed: %v", err)
		m.notifier.Notify(core.NotifyError, "Recording failed", err.Error())
		return err
	}

	att := core.Attachment{
		FileName: "voice-" + uuid.NewString() + format.Extension,
		MimeType: format.MimeType,
		Category: core.MediaAudio,
		Data:     data,
	}
	m.logf("capture finalized, %d bytes as %s", len(data), att.FileName)
	return m.pipeline.SendAttachment(ctx, att, "")
}

// Teardown releases the device if a recording is still active. Called
// on application shutdown; the partial recording is discarded.
func (m *CaptureManager) Teardown() {
	if m.pipeline.endRecording() {
		if err := m.recorder.Stop(); err != nil {
			m.logf("teardown stop failed: %v", err)
		}
		m.emit(core.CaptureEvent{Recording: false})
	}
	m.mu.Lock()
	m.chunks = nil
	m.mu.Unlock()
}

func (m *CaptureManager) appendChunk(chunk []byte) {
	if !m.pipeline.Recording() {
		return
	}
	m.mu.Lock()
	m.chunks = append(m.chunks, chunk)
	m.mu.Unlock()
}
