package models

import "time"

// Quote is a saved recommendation
type Quote struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	PropertyType string    `json:"propertyType"`
	Objective    string    `json:"energyObjective"`
	InverterKVA  float64   `json:"inverterKva"`
	BatteryKWh   float64   `json:"batteryKwh"`
	SolarKW      float64   `json:"solarKw"`
	TotalPrice   float64   `json:"totalPrice"`
	Currency     string    `json:"currency"`
	Preset       string    `json:"preset"`
	Contact      string    `json:"contact,omitempty"` // email or phone left for follow-up
	Payload      []byte    `json:"-"`                 // full recommendation document as JSON
	Published    bool      `json:"published"`
}
