package models

// Product types
const (
	ProductBundle    = "bundle"
	ProductInverter  = "inverter"
	ProductBattery   = "battery"
	ProductSolar     = "solar"
	ProductAccessory = "accessory"
)

// Product is a storefront catalog item
type Product struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Category    string  `json:"category" yaml:"category"` // residential, commercial, grid-scale
	Type        string  `json:"type" yaml:"type"`
	Price       float64 `json:"price" yaml:"price"`
	Image       string  `json:"image" yaml:"image"`
	InverterKVA float64 `json:"inverterKva,omitempty" yaml:"inverter_kva"`
	BatteryKWh  float64 `json:"batteryKwh,omitempty" yaml:"battery_kwh"`
	SolarKW     float64 `json:"solarKw,omitempty" yaml:"solar_kw"`
	InStock     bool    `json:"inStock" yaml:"in_stock"`
}
