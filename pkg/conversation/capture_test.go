package conversation

import (
	"Prontu/pkg/audio"
	"Prontu/pkg/core"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
)

type fakeRecorder struct {
	startErr error
	stopErr  error
	onChunk  func([]byte)
	started  int
	stopped  int
}

func (f *fakeRecorder) Start(onChunk func([]byte)) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.onChunk = onChunk
	f.started++
	return nil
}

func (f *fakeRecorder) Stop() error {
	f.stopped++
	return f.stopErr
}

func (f *fakeRecorder) Format() audio.Format {
	return audio.Format{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
		MimeType:   "audio/wav",
		Extension:  ".wav",
	}
}

func pcmChunk(samples ...int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// openCapture builds a capture manager over an open conversation.
func openCapture(t *testing.T, recorder *fakeRecorder, sender *fakeSender, notifier core.Notifier) *CaptureManager {
	t.Helper()
	p := openPipeline(t, sender, notifier)
	return NewCaptureManager(recorder, p, p.syncer.Address, notifier, nil)
}

func TestRecordingLifecycle(t *testing.T) {
	recorder := &fakeRecorder{}
	sender := &fakeSender{}
	m := openCapture(t, recorder, sender, &recordingNotifier{})

	if err := m.StartRecording(); err != nil {
		t.Fatalf("StartRecording returned error: %v", err)
	}
	if !m.Active() {
		t.Fatal("Active() = false after start")
	}

	recorder.onChunk(pcmChunk(100, -100, 2000))
	recorder.onChunk(pcmChunk(-2000, 0))

	if err := m.StopRecording(context.Background()); err != nil {
		t.Fatalf("StopRecording returned error: %v", err)
	}
	if m.Active() {
		t.Error("Active() = true after stop")
	}
	if recorder.stopped != 1 {
		t.Errorf("device stopped %d times, want 1", recorder.stopped)
	}

	calls := sender.sent()
	if len(calls) != 1 {
		t.Fatalf("got %d sends, want 1", len(calls))
	}
	att := calls[0].att
	if calls[0].kind != "media" {
		t.Errorf("voice message routed to %q, want media", calls[0].kind)
	}
	if att.Category != core.MediaAudio {
		t.Errorf("Category = %q, want audio", att.Category)
	}
	if att.MimeType != "audio/wav" {
		t.Errorf("MimeType = %q", att.MimeType)
	}
	if !bytes.HasPrefix(att.Data, []byte("RIFF")) {
		t.Error("payload is not a WAV file")
	}
	if len(att.FileName) == 0 || att.FileName[:6] != "voice-" {
		t.Errorf("FileName = %q, want voice-* prefix", att.FileName)
	}
}

func TestStartRecordingRequiresConversation(t *testing.T) {
	recorder := &fakeRecorder{}
	p := NewPipeline(&fakeSender{}, completeConfigs(), nil, NewSynchronizer(&fakeHistory{}, completeConfigs(), nil), nil, 1600)
	m := NewCaptureManager(recorder, p, p.syncer.Address, nil, nil)

	if err := m.StartRecording(); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("StartRecording with no conversation = %v, want ErrNoConversation", err)
	}
	if recorder.started != 0 {
		t.Error("device was opened without a conversation")
	}
}

func TestStartRecordingTwiceRejected(t *testing.T) {
	recorder := &fakeRecorder{}
	m := openCapture(t, recorder, &fakeSender{}, &recordingNotifier{})

	if err := m.StartRecording(); err != nil {
		t.Fatalf("first StartRecording returned error: %v", err)
	}
	if err := m.StartRecording(); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("second StartRecording = %v, want ErrAlreadyRecording", err)
	}
	if recorder.started != 1 {
		t.Errorf("device opened %d times, want 1", recorder.started)
	}
}

func TestStopRecordingWhileIdleRejected(t *testing.T) {
	m := openCapture(t, &fakeRecorder{}, &fakeSender{}, &recordingNotifier{})

	if err := m.StopRecording(context.Background()); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("StopRecording while idle = %v, want ErrNotRecording", err)
	}
}

func TestStartRecordingDeviceUnavailable(t *testing.T) {
	recorder := &fakeRecorder{startErr: audio.ErrDeviceUnavailable}
	notifier := &recordingNotifier{}
	m := openCapture(t, recorder, &fakeSender{}, notifier)

	if err := m.StartRecording(); !errors.Is(err, audio.ErrDeviceUnavailable) {
		t.Fatalf("StartRecording = %v, want ErrDeviceUnavailable", err)
	}
	if m.Active() {
		t.Error("session stayed active after device failure")
	}
	if notifier.last() != core.NotifyError {
		t.Errorf("last notification = %q, want error", notifier.last())
	}

	// The session must be retryable once the device is back.
	recorder.startErr = nil
	if err := m.StartRecording(); err != nil {
		t.Fatalf("retry after device failure returned error: %v", err)
	}
}

func TestStartRecordingWhileSendInFlight(t *testing.T) {
	sender := &fakeSender{started: make(chan struct{}, 1), release: make(chan struct{})}
	recorder := &fakeRecorder{}
	notifier := &recordingNotifier{}
	p := openPipeline(t, sender, notifier)
	m := NewCaptureManager(recorder, p, p.syncer.Address, notifier, nil)

	done := make(chan error, 1)
	go func() {
		done <- p.SendText(context.Background(), "hello")
	}()
	<-sender.started

	if err := m.StartRecording(); !errors.Is(err, ErrSendInProgress) {
		t.Errorf("StartRecording during send = %v, want ErrSendInProgress", err)
	}

	close(sender.release)
	if err := <-done; err != nil {
		t.Fatalf("send returned error: %v", err)
	}
}

func TestSendBlockedWhileRecording(t *testing.T) {
	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	p := openPipeline(t, sender, &recordingNotifier{})
	m := NewCaptureManager(recorder, p, p.syncer.Address, nil, nil)

	if err := m.StartRecording(); err != nil {
		t.Fatalf("StartRecording returned error: %v", err)
	}
	if err := p.SendText(context.Background(), "hello"); !errors.Is(err, ErrCaptureActive) {
		t.Errorf("SendText while recording = %v, want ErrCaptureActive", err)
	}
}

func TestTeardownReleasesDevice(t *testing.T) {
	recorder := &fakeRecorder{}
	sender := &fakeSender{}
	m := openCapture(t, recorder, sender, &recordingNotifier{})

	if err := m.StartRecording(); err != nil {
		t.Fatalf("StartRecording returned error: %v", err)
	}
	m.Teardown()

	if m.Active() {
		t.Error("Active() = true after teardown")
	}
	if recorder.stopped != 1 {
		t.Errorf("device stopped %d times, want 1", recorder.stopped)
	}
	if len(sender.sent()) != 0 {
		t.Error("partial recording was sent on teardown")
	}
}
