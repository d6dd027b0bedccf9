// Package models defines the persisted data models. Conversation state
// is deliberately not persisted; the database only holds patient
// identity and the gateway settings value.
package models

import "time"

// Patient is the read-only identity the messaging core consumes. The
// record screens that manage the rest of the patient chart live outside
// this application.
type Patient struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GatewaySettings stores the single gateway configuration value owned
// by the configuration provider. One row per installation.
type GatewaySettings struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	BaseURL      string    `json:"baseUrl"`
	APIKey       string    `json:"apiKey"`
	InstanceName string    `json:"instanceName"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
