package forecast

// Appliance advises whether to run heavy appliances now.
type Appliance struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	Color  string `json:"color"`
}

// ApplianceStatus maps an efficiency to RUN NOW (above 70), WAIT (30 to 70)
// or AVOID.
func ApplianceStatus(efficiency float64) Appliance {
	switch {
	case efficiency > 70:
		return Appliance{Status: "RUN NOW", Mode: "Solar Powered", Color: "#00ff88"}
	case efficiency >= 30:
		return Appliance{Status: "WAIT", Mode: "ECO Mode", Color: "#ffcc00"}
	default:
		return Appliance{Status: "AVOID", Mode: "Grid Power", Color: "#ff4444"}
	}
}

// TimeEmoji returns an icon for the time of day.
func TimeEmoji(hour int) string {
	switch {
	case hour >= 5 && hour < 8:
		return "🌅"
	case hour >= 8 && hour < 12:
		return "🌤️"
	case hour >= 12 && hour < 17:
		return "☀️"
	case hour >= 17 && hour < 20:
		return "🌆"
	default:
		return "🌙"
	}
}

// Category is a descriptive efficiency band.
type Category struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

func (c Category) String() string {
	return c.Label + " " + c.Icon
}

// CategorizeEfficiency bands an efficiency: Excellent from 80, Good from 60,
// Moderate from 40, Low from 20, Very Low below.
func CategorizeEfficiency(efficiency float64) Category {
	switch {
	case efficiency >= 80:
		return Category{Label: "Excellent", Icon: "⭐⭐⭐"}
	case efficiency >= 60:
		return Category{Label: "Good", Icon: "⭐⭐"}
	case efficiency >= 40:
		return Category{Label: "Moderate", Icon: "⭐"}
	case efficiency >= 20:
		return Category{Label: "Low", Icon: "☁️"}
	default:
		return Category{Label: "Very Low", Icon: "🌧️"}
	}
}
