package models

// Appliance is a catalog entry the builder offers for selection
type Appliance struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Watts    float64 `json:"wattage" yaml:"watts"`
	Category string  `json:"category" yaml:"category"` // lighting, cooling, entertainment, kitchen, other
}

// DefaultAppliances returns the builder's stock appliance list
func DefaultAppliances() []Appliance {
	return []Appliance{
		{ID: "led-light", Name: "LED Light Bulb", Watts: 10, Category: "lighting"},
		{ID: "ceiling-fan", Name: "Ceiling Fan", Watts: 75, Category: "cooling"},
		{ID: "standing-fan", Name: "Standing Fan", Watts: 60, Category: "cooling"},
		{ID: "ac-1hp", Name: "Air Conditioner (1HP)", Watts: 1000, Category: "cooling"},
		{ID: "ac-1.5hp", Name: "Air Conditioner (1.5HP)", Watts: 1500, Category: "cooling"},
		{ID: "ac-2hp", Name: "Air Conditioner (2HP)", Watts: 2000, Category: "cooling"},
		{ID: "tv-led", Name: "LED TV (42\")", Watts: 100, Category: "entertainment"},
		{ID: "tv-large", Name: "LED TV (55\"+)", Watts: 150, Category: "entertainment"},
		{ID: "decoder", Name: "Satellite Decoder", Watts: 30, Category: "entertainment"},
		{ID: "sound-system", Name: "Sound System", Watts: 200, Category: "entertainment"},
		{ID: "refrigerator", Name: "Refrigerator", Watts: 150, Category: "kitchen"},
		{ID: "freezer", Name: "Deep Freezer", Watts: 200, Category: "kitchen"},
		{ID: "microwave", Name: "Microwave", Watts: 1200, Category: "kitchen"},
		{ID: "blender", Name: "Blender", Watts: 400, Category: "kitchen"},
		{ID: "water-pump", Name: "Water Pump", Watts: 750, Category: "other"},
		{ID: "laptop", Name: "Laptop", Watts: 65, Category: "other"},
		{ID: "desktop", Name: "Desktop Computer", Watts: 200, Category: "other"},
		{ID: "router", Name: "WiFi Router", Watts: 15, Category: "other"},
		{ID: "washing-machine", Name: "Washing Machine", Watts: 500, Category: "other"},
		{ID: "iron", Name: "Pressing Iron", Watts: 1000, Category: "other"},
	}
}

// FindAppliance looks up an appliance by id
func FindAppliance(catalog []Appliance, id string) (Appliance, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Appliance{}, false
}
