// Package conversation orchestrates the open patient conversation:
// history synchronization, outbound sends and the audio capture
// session.
package conversation

import (
	"Prontu/pkg/core"
	"Prontu/pkg/gateway"
	"Prontu/pkg/logging"
	"Prontu/pkg/models"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Phase is the synchronizer state for the open conversation.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// reconcileDelay is how long after a successful send the authoritative
// history is re-fetched to replace the optimistic UI state.
const reconcileDelay = 1500 * time.Millisecond

// Snapshot is a copy of the conversation state handed to the view.
type Snapshot struct {
	Address   string            `json:"address"`
	PatientID uint              `json:"patientId"`
	Phase     Phase             `json:"phase"`
	Messages  []gateway.Message `json:"messages"`
	Error     string            `json:"error,omitempty"`
}

// historyClient is the slice of the gateway client the synchronizer
// needs.
type historyClient interface {
	FetchHistory(ctx context.Context, cfg core.GatewayConfig, address string) ([]gateway.RawMessage, error)
}

// Synchronizer owns the message state of the currently open
// conversation. Messages are replaced wholesale on every successful
// fetch; there is no incremental merge.
type Synchronizer struct {
	client  historyClient
	configs core.ConfigProvider
	emit    func(core.AppEvent)
	logger  *logging.ComponentLogger

	mu        sync.Mutex
	address   string
	patientID uint
	phase     Phase
	messages  []gateway.Message
	errText   string
	reconcile *time.Timer
}

// NewSynchronizer creates an idle synchronizer. emit may be nil.
func NewSynchronizer(client historyClient, configs core.ConfigProvider, emit func(core.AppEvent)) *Synchronizer {
	logger, err := logging.GetLogger("conversation", "sync")
	if err != nil {
		fmt.Printf("conversation: WARNING - failed to initialize logger: %v\n", err)
	}
	if emit == nil {
		emit = func(core.AppEvent) {}
	}
	return &Synchronizer{
		client:  client,
		configs: configs,
		emit:    emit,
		logger:  logger,
		phase:   PhaseIdle,
	}
}

func (s *Synchronizer) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Logf(format, args...)
	}
}

// Open points the synchronizer at a patient's conversation and loads
// its history. A patient whose phone cannot be normalized fails
// immediately without touching the network.
func (s *Synchronizer) Open(ctx context.Context, patient models.Patient) error {
	address, err := gateway.NormalizeAddress(patient.Phone)
	if err != nil {
		s.logf("open: patient %d has no routable phone (%q)", patient.ID, patient.Phone)
		// The previous conversation's context must not survive a failed
		// switch: a send issued now would otherwise go to the old
		// patient's address.
		s.mu.Lock()
		s.address = ""
		s.patientID = 0
		s.stopReconcileLocked()
		s.mu.Unlock()
		s.failWithoutFetch(0, "", fmt.Sprintf("patient %q has no valid phone number", patient.Name))
		return &gateway.ConfigurationError{Reason: "patient phone number is not routable"}
	}

	s.mu.Lock()
	s.address = address
	s.patientID = patient.ID
	s.stopReconcileLocked()
	s.mu.Unlock()

	return s.load(ctx)
}

// Refresh re-fetches the open conversation.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	address := s.address
	s.mu.Unlock()

	if address == "" {
		s.failWithoutFetch(0, "", "no conversation is open")
		return &gateway.ConfigurationError{Reason: "no conversation is open"}
	}
	return s.load(ctx)
}

// Close discards the conversation state when the view closes or the
// patient changes away.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = ""
	s.patientID = 0
	s.phase = PhaseIdle
	s.messages = nil
	s.errText = ""
	s.stopReconcileLocked()
}

// Address returns the protocol address of the open conversation, or ""
// when none is open.
func (s *Synchronizer) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// Snapshot copies the current conversation state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]gateway.Message, len(s.messages))
	copy(messages, s.messages)
	return Snapshot{
		Address:   s.address,
		PatientID: s.patientID,
		Phase:     s.phase,
		Messages:  messages,
		Error:     s.errText,
	}
}

// ScheduleReconcile arranges a delayed re-fetch so the just-sent
// message is pulled back in its authoritative gateway form. Only one
// reconciliation is pending at a time.
func (s *Synchronizer) ScheduleReconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopReconcileLocked()
	s.reconcile = time.AfterFunc(reconcileDelay, func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.logf("reconcile fetch failed: %v", err)
		}
	})
}

func (s *Synchronizer) stopReconcileLocked() {
	if s.reconcile != nil {
		s.reconcile.Stop()
		s.reconcile = nil
	}
}

// load runs one Loading -> {Loaded, Failed} cycle. The address is
// captured before the fetch; if the user switched patients while the
// request was in flight the late response is discarded instead of
// being applied to the wrong conversation.
func (s *Synchronizer) load(ctx context.Context) error {
	s.mu.Lock()
	address := s.address
	patientID := s.patientID
	s.phase = PhaseLoading
	s.errText = ""
	s.mu.Unlock()

	s.emit(core.ConversationEvent{
		Address:      address,
		PatientID:    patientID,
		MessageCount: 0,
		Loading:      true,
	})

	cfg, err := s.configs.GatewayConfig()
	if err != nil || !cfg.Complete() {
		s.logf("load: gateway configuration unavailable for %s", address)
		s.failWithoutFetch(patientID, address, "gateway is not configured")
		return &gateway.ConfigurationError{Reason: "gateway configuration is incomplete"}
	}

	raws, err := s.client.FetchHistory(ctx, cfg, address)

	s.mu.Lock()
	if s.address != address {
		// Stale response: the open conversation changed while the fetch
		// was in flight.
		s.mu.Unlock()
		s.logf("load: discarding stale history response for %s", address)
		return nil
	}
	if err != nil {
		s.phase = PhaseFailed
		s.errText = errorDetail(err)
		s.messages = nil
		s.mu.Unlock()
		s.logf("load: history fetch failed for %s: %v", address, err)
		s.emit(core.ConversationEvent{
			Address:   address,
			PatientID: patientID,
			Loading:   false,
			Error:     errorDetail(err),
		})
		return err
	}

	// An empty history is a valid Loaded state, distinct from Failed.
	s.messages = gateway.DecodeAll(raws)
	s.phase = PhaseLoaded
	s.errText = ""
	count := len(s.messages)
	s.mu.Unlock()

	s.logf("load: %d messages for %s", count, address)
	s.emit(core.ConversationEvent{
		Address:        address,
		PatientID:      patientID,
		MessageCount:   count,
		Loading:        false,
		ScrollToLatest: true,
	})
	return nil
}

// failWithoutFetch records a failure that never reached the network.
// Stale message data must not survive an invalid context, so the list
// is cleared.
func (s *Synchronizer) failWithoutFetch(patientID uint, address, detail string) {
	s.mu.Lock()
	s.phase = PhaseFailed
	s.errText = detail
	s.messages = nil
	s.mu.Unlock()

	s.emit(core.ConversationEvent{
		Address:   address,
		PatientID: patientID,
		Loading:   false,
		Error:     detail,
	})
}

// errorDetail prefers the gateway's extracted message over the
// wrapper's prose.
func errorDetail(err error) string {
	var protoErr *gateway.ProtocolError
	if errors.As(err, &protoErr) && protoErr.Detail != "" {
		return protoErr.Detail
	}
	return err.Error()
}
