package db

import (
	"Prontu/pkg/models"
	"path/filepath"
	"testing"
)

func TestInitDatabaseAtMigratesAndStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	if err := InitDatabaseAt(path); err != nil {
		t.Fatalf("InitDatabaseAt returned error: %v", err)
	}

	patient := models.Patient{Name: "Ana Souza", Phone: "11987654321"}
	if err := DB.Create(&patient).Error; err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	if patient.ID == 0 {
		t.Fatal("patient ID was not assigned")
	}

	var loaded models.Patient
	if err := DB.First(&loaded, patient.ID).Error; err != nil {
		t.Fatalf("failed to load patient: %v", err)
	}
	if loaded.Name != "Ana Souza" || loaded.Phone != "11987654321" {
		t.Errorf("loaded patient = %+v", loaded)
	}

	settings := models.GatewaySettings{BaseURL: "https://gw.example.com", APIKey: "k", InstanceName: "clinic"}
	if err := DB.Save(&settings).Error; err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	var loadedSettings models.GatewaySettings
	if err := DB.First(&loadedSettings).Error; err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if loadedSettings.InstanceName != "clinic" {
		t.Errorf("loaded settings = %+v", loadedSettings)
	}
}
