// Package main is the entry point for the Prontu patient messaging application.
package main

import (
	"Prontu/pkg/audio"
	"Prontu/pkg/conversation"
	"Prontu/pkg/core"
	"Prontu/pkg/db"
	"Prontu/pkg/gateway"
	"Prontu/pkg/logging"
	"Prontu/pkg/models"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"gorm.io/gorm"
)

// App struct
type App struct {
	ctx      context.Context
	prefs    core.Preferences
	client   *gateway.Client
	settings *settingsStore
	sync     *conversation.Synchronizer
	pipeline *conversation.Pipeline
	capture  *conversation.CaptureManager
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	prefsPath, err := core.PreferencesPath()
	if err != nil {
		log.Printf("Warning: Failed to resolve preferences path: %v", err)
	}
	a.prefs, err = core.LoadPreferences(prefsPath)
	if err != nil {
		log.Printf("Warning: Failed to load preferences, using defaults: %v", err)
		a.prefs = core.DefaultPreferences()
	}

	// Initialize the database
	if err := db.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := logging.CleanupOldLogs(a.prefs.LogRetentionDays); err != nil {
		log.Printf("Warning: Failed to clean up old logs: %v", err)
	}

	a.settings = &settingsStore{}
	a.client = gateway.NewClient(time.Duration(a.prefs.RequestTimeoutSeconds) * time.Second)

	notifier := &wailsNotifier{app: a}
	a.sync = conversation.NewSynchronizer(a.client, a.settings, a.emitEvent)
	a.pipeline = conversation.NewPipeline(a.client, a.settings, notifier, a.sync, a.emitEvent, a.prefs.MaxImageEdge)
	a.capture = conversation.NewCaptureManager(audio.NewDeviceRecorder(), a.pipeline, a.sync.Address, notifier, a.emitEvent)
}

// shutdown is called at application closure.
func (a *App) shutdown(_ context.Context) {
	if a.capture != nil {
		a.capture.Teardown()
	}
	if a.sync != nil {
		a.sync.Close()
	}
	logging.CloseAll()
}

// emitEvent serializes an application event and forwards it to the
// frontend under the event's type name.
func (a *App) emitEvent(event core.AppEvent) {
	if a.ctx == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event.Type(), err)
		return
	}
	runtime.EventsEmit(a.ctx, string(event.Type()), string(payload))
}

// wailsNotifier forwards user-facing notifications to the frontend
// toast layer.
type wailsNotifier struct {
	app *App
}

func (n *wailsNotifier) Notify(kind core.NotifyKind, title, detail string) {
	if n.app.ctx == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"kind":   string(kind),
		"title":  title,
		"detail": detail,
	})
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}
	runtime.EventsEmit(n.app.ctx, "notify", string(payload))
}

// settingsStore reads and writes the single gateway settings row. It
// satisfies core.ConfigProvider for the gateway client and the
// conversation layer.
type settingsStore struct{}

// GatewayConfig returns the stored gateway connection settings. A
// missing row yields an empty, incomplete config rather than an error.
func (s *settingsStore) GatewayConfig() (core.GatewayConfig, error) {
	if db.DB == nil {
		return core.GatewayConfig{}, fmt.Errorf("database is not initialized")
	}
	var row models.GatewaySettings
	if err := db.DB.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.GatewayConfig{}, nil
		}
		return core.GatewayConfig{}, fmt.Errorf("failed to load gateway settings: %w", err)
	}
	return core.GatewayConfig{
		BaseURL:      row.BaseURL,
		APIKey:       row.APIKey,
		InstanceName: row.InstanceName,
	}, nil
}

// Save persists the gateway settings, keeping a single row.
func (s *settingsStore) Save(cfg core.GatewayConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if db.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	var row models.GatewaySettings
	db.DB.First(&row)
	row.BaseURL = gateway.BaseURL(cfg.BaseURL)
	row.APIKey = cfg.APIKey
	row.InstanceName = cfg.InstanceName
	if err := db.DB.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save gateway settings: %w", err)
	}
	return nil
}

// --- Methods Exposed to the Frontend ---

// ListPatients returns all registered patients ordered by name.
func (a *App) ListPatients() ([]models.Patient, error) {
	if db.DB == nil {
		return nil, fmt.Errorf("database is not initialized")
	}
	var patients []models.Patient
	if err := db.DB.Order("name").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// SavePatient creates or updates a patient record.
func (a *App) SavePatient(patient models.Patient) (models.Patient, error) {
	if patient.Name == "" {
		return models.Patient{}, fmt.Errorf("patient name is required")
	}
	if db.DB == nil {
		return models.Patient{}, fmt.Errorf("database is not initialized")
	}
	if err := db.DB.Save(&patient).Error; err != nil {
		return models.Patient{}, fmt.Errorf("failed to save patient: %w", err)
	}
	return patient, nil
}

// DeletePatient removes a patient record. The open conversation is
// closed if it belongs to the deleted patient.
func (a *App) DeletePatient(id uint) error {
	if db.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	if err := db.DB.Delete(&models.Patient{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if snap := a.sync.Snapshot(); snap.PatientID == id {
		a.sync.Close()
	}
	return nil
}

// GetGatewaySettings returns the stored gateway connection settings.
func (a *App) GetGatewaySettings() (core.GatewayConfig, error) {
	return a.settings.GatewayConfig()
}

// SaveGatewaySettings validates and persists gateway connection
// settings.
func (a *App) SaveGatewaySettings(cfg core.GatewayConfig) error {
	return a.settings.Save(cfg)
}

// GatewayStatus queries the connection state of the configured
// instance.
func (a *App) GatewayStatus() (gateway.InstanceState, error) {
	cfg, err := a.settings.GatewayConfig()
	if err != nil {
		return gateway.InstanceState{}, err
	}
	state, err := a.client.GetStatus(a.ctx, cfg)
	if err != nil {
		return gateway.InstanceState{}, err
	}
	a.emitEvent(core.GatewayStateEvent{State: state.State})
	return state, nil
}

// GatewayConnect initiates a connection for the configured instance.
// When the instance is not yet paired the result carries a QR code
// image for the frontend to display.
func (a *App) GatewayConnect() (gateway.ConnectResult, error) {
	cfg, err := a.settings.GatewayConfig()
	if err != nil {
		return gateway.ConnectResult{}, err
	}
	result, err := a.client.Connect(a.ctx, cfg)
	if err != nil {
		return gateway.ConnectResult{}, err
	}
	a.emitEvent(core.GatewayStateEvent{State: result.State, QRImage: result.QRImage})
	return result, nil
}

// GatewayDisconnect logs the configured instance out of the gateway.
func (a *App) GatewayDisconnect() error {
	cfg, err := a.settings.GatewayConfig()
	if err != nil {
		return err
	}
	if err := a.client.Disconnect(a.ctx, cfg); err != nil {
		return err
	}
	a.emitEvent(core.GatewayStateEvent{State: "close"})
	return nil
}

// OpenConversation loads the message history for a patient.
func (a *App) OpenConversation(patientID uint) error {
	if db.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	var patient models.Patient
	if err := db.DB.First(&patient, patientID).Error; err != nil {
		return fmt.Errorf("failed to load patient %d: %w", patientID, err)
	}
	return a.sync.Open(a.ctx, patient)
}

// RefreshConversation re-fetches the open conversation's history.
func (a *App) RefreshConversation() error {
	return a.sync.Refresh(a.ctx)
}

// CloseConversation discards the open conversation.
func (a *App) CloseConversation() {
	a.sync.Close()
}

// ConversationSnapshot returns the current conversation state for
// rendering.
func (a *App) ConversationSnapshot() conversation.Snapshot {
	return a.sync.Snapshot()
}

// SendTextMessage submits a text message to the open conversation.
func (a *App) SendTextMessage(text string) error {
	return a.pipeline.SendText(a.ctx, text)
}

// SendAttachment submits a file to the open conversation. Data is
// base64-encoded by the frontend file picker.
func (a *App) SendAttachment(fileName, mimeType, dataBase64, caption string) error {
	data, err := base64.StdEncoding.DecodeString(dataBase64)
	if err != nil {
		return fmt.Errorf("failed to decode attachment data: %w", err)
	}
	att := core.Attachment{
		FileName: fileName,
		MimeType: mimeType,
		Category: core.CategoryForMime(mimeType),
		Data:     data,
	}
	return a.pipeline.SendAttachment(a.ctx, att, caption)
}

// StartRecording begins an audio capture session for the open
// conversation.
func (a *App) StartRecording() error {
	return a.capture.StartRecording()
}

// StopRecording finalizes the capture session and sends the recording
// as a voice message.
func (a *App) StopRecording() error {
	return a.capture.StopRecording(a.ctx)
}

// IsRecording reports whether a capture session is active.
func (a *App) IsRecording() bool {
	return a.capture.Active()
}
