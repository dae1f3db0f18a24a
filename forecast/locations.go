package forecast

import (
	"math/rand/v2"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Location is a selectable city with its typical weather.
type Location struct {
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	BaseTemperature float64 `json:"base_temperature"`
	BaseHumidity    float64 `json:"base_humidity"`
}

// DefaultLocation is the first entry of Locations.
const DefaultLocation = "Mumbai, Maharashtra"

// Locations lists the supported cities in display order.
var Locations = []Location{
	{Name: "Mumbai, Maharashtra", Latitude: 19.0760, Longitude: 72.8777, BaseTemperature: 28, BaseHumidity: 70},
	{Name: "Delhi, NCR", Latitude: 28.6139, Longitude: 77.2090, BaseTemperature: 25, BaseHumidity: 55},
	{Name: "Bangalore, Karnataka", Latitude: 12.9716, Longitude: 77.5946, BaseTemperature: 24, BaseHumidity: 60},
	{Name: "Chennai, Tamil Nadu", Latitude: 13.0827, Longitude: 80.2707, BaseTemperature: 30, BaseHumidity: 75},
	{Name: "Kolkata, West Bengal", Latitude: 22.5726, Longitude: 88.3639, BaseTemperature: 29, BaseHumidity: 80},
	{Name: "Hyderabad, Telangana", Latitude: 17.3850, Longitude: 78.4867, BaseTemperature: 27, BaseHumidity: 58},
	{Name: "Ahmedabad, Gujarat", Latitude: 23.0225, Longitude: 72.5714, BaseTemperature: 29, BaseHumidity: 45},
	{Name: "Pune, Maharashtra", Latitude: 18.5204, Longitude: 73.8567, BaseTemperature: 26, BaseHumidity: 55},
	{Name: "Jaipur, Rajasthan", Latitude: 26.9124, Longitude: 75.7873, BaseTemperature: 28, BaseHumidity: 40},
	{Name: "Lucknow, Uttar Pradesh", Latitude: 26.8467, Longitude: 80.9462, BaseTemperature: 26, BaseHumidity: 60},
	{Name: "Kanpur, Uttar Pradesh", Latitude: 26.4499, Longitude: 80.3319, BaseTemperature: 27, BaseHumidity: 58},
	{Name: "Nagpur, Maharashtra", Latitude: 21.1458, Longitude: 79.0882, BaseTemperature: 28, BaseHumidity: 50},
	{Name: "Indore, Madhya Pradesh", Latitude: 22.7196, Longitude: 75.8577, BaseTemperature: 27, BaseHumidity: 48},
	{Name: "Bhopal, Madhya Pradesh", Latitude: 23.2599, Longitude: 77.4126, BaseTemperature: 26, BaseHumidity: 50},
	{Name: "Patna, Bihar", Latitude: 25.5941, Longitude: 85.1376, BaseTemperature: 28, BaseHumidity: 65},
	{Name: "Vadodara, Gujarat", Latitude: 22.3072, Longitude: 73.1812, BaseTemperature: 28, BaseHumidity: 50},
	{Name: "Surat, Gujarat", Latitude: 21.1702, Longitude: 72.8311, BaseTemperature: 29, BaseHumidity: 65},
	{Name: "Visakhapatnam, Andhra Pradesh", Latitude: 17.6868, Longitude: 83.2185, BaseTemperature: 29, BaseHumidity: 75},
	{Name: "Coimbatore, Tamil Nadu", Latitude: 11.0168, Longitude: 76.9558, BaseTemperature: 26, BaseHumidity: 60},
	{Name: "Madurai, Tamil Nadu", Latitude: 9.9252, Longitude: 78.1198, BaseTemperature: 30, BaseHumidity: 65},
	{Name: "Kochi, Kerala", Latitude: 9.9312, Longitude: 76.2673, BaseTemperature: 28, BaseHumidity: 80},
	{Name: "Thiruvananthapuram, Kerala", Latitude: 8.5241, Longitude: 76.9366, BaseTemperature: 28, BaseHumidity: 78},
	{Name: "Bhubaneswar, Odisha", Latitude: 20.2961, Longitude: 85.8245, BaseTemperature: 28, BaseHumidity: 70},
	{Name: "Ranchi, Jharkhand", Latitude: 23.3441, Longitude: 85.3096, BaseTemperature: 25, BaseHumidity: 60},
	{Name: "Guwahati, Assam", Latitude: 26.1445, Longitude: 91.7362, BaseTemperature: 26, BaseHumidity: 75},
	{Name: "Chandigarh, Punjab", Latitude: 30.7333, Longitude: 76.7794, BaseTemperature: 24, BaseHumidity: 55},
	{Name: "Amritsar, Punjab", Latitude: 31.6340, Longitude: 74.8723, BaseTemperature: 25, BaseHumidity: 50},
	{Name: "Ludhiana, Punjab", Latitude: 30.9010, Longitude: 75.8573, BaseTemperature: 25, BaseHumidity: 52},
	{Name: "Dehradun, Uttarakhand", Latitude: 30.3165, Longitude: 78.0322, BaseTemperature: 22, BaseHumidity: 60},
	{Name: "Shimla, Himachal Pradesh", Latitude: 31.1048, Longitude: 77.1734, BaseTemperature: 15, BaseHumidity: 65},
	{Name: "Srinagar, Jammu & Kashmir", Latitude: 34.0837, Longitude: 74.7973, BaseTemperature: 14, BaseHumidity: 55},
	{Name: "Jammu, Jammu & Kashmir", Latitude: 32.7266, Longitude: 74.8570, BaseTemperature: 22, BaseHumidity: 50},
	{Name: "Raipur, Chhattisgarh", Latitude: 21.2514, Longitude: 81.6296, BaseTemperature: 28, BaseHumidity: 55},
	{Name: "Varanasi, Uttar Pradesh", Latitude: 25.3176, Longitude: 82.9739, BaseTemperature: 27, BaseHumidity: 62},
	{Name: "Agra, Uttar Pradesh", Latitude: 27.1767, Longitude: 78.0081, BaseTemperature: 27, BaseHumidity: 55},
	{Name: "Jodhpur, Rajasthan", Latitude: 26.2389, Longitude: 73.0243, BaseTemperature: 30, BaseHumidity: 35},
	{Name: "Udaipur, Rajasthan", Latitude: 24.5854, Longitude: 73.7125, BaseTemperature: 28, BaseHumidity: 45},
	{Name: "Goa (Panaji)", Latitude: 15.4909, Longitude: 73.8278, BaseTemperature: 29, BaseHumidity: 75},
	{Name: "Mangalore, Karnataka", Latitude: 12.9141, Longitude: 74.8560, BaseTemperature: 28, BaseHumidity: 78},
	{Name: "Mysore, Karnataka", Latitude: 12.2958, Longitude: 76.6394, BaseTemperature: 25, BaseHumidity: 58},
	{Name: "Vijayawada, Andhra Pradesh", Latitude: 16.5062, Longitude: 80.6480, BaseTemperature: 30, BaseHumidity: 70},
	{Name: "Tiruchirappalli, Tamil Nadu", Latitude: 10.7905, Longitude: 78.7047, BaseTemperature: 30, BaseHumidity: 68},
	{Name: "Salem, Tamil Nadu", Latitude: 11.6643, Longitude: 78.1460, BaseTemperature: 28, BaseHumidity: 55},
	{Name: "Aurangabad, Maharashtra", Latitude: 19.8762, Longitude: 75.3433, BaseTemperature: 28, BaseHumidity: 48},
	{Name: "Nashik, Maharashtra", Latitude: 19.9975, Longitude: 73.7898, BaseTemperature: 26, BaseHumidity: 52},
	{Name: "Rajkot, Gujarat", Latitude: 22.3039, Longitude: 70.8022, BaseTemperature: 28, BaseHumidity: 45},
	{Name: "Jabalpur, Madhya Pradesh", Latitude: 23.1815, Longitude: 79.9864, BaseTemperature: 27, BaseHumidity: 52},
	{Name: "Gwalior, Madhya Pradesh", Latitude: 26.2183, Longitude: 78.1828, BaseTemperature: 28, BaseHumidity: 48},
	{Name: "Allahabad, Uttar Pradesh", Latitude: 25.4358, Longitude: 81.8463, BaseTemperature: 28, BaseHumidity: 58},
	{Name: "Meerut, Uttar Pradesh", Latitude: 28.9845, Longitude: 77.7064, BaseTemperature: 26, BaseHumidity: 55},
	{Name: "Faridabad, Haryana", Latitude: 28.4089, Longitude: 77.3178, BaseTemperature: 26, BaseHumidity: 52},
	{Name: "Gurugram, Haryana", Latitude: 28.4595, Longitude: 77.0266, BaseTemperature: 26, BaseHumidity: 50},
	{Name: "Noida, Uttar Pradesh", Latitude: 28.5355, Longitude: 77.3910, BaseTemperature: 26, BaseHumidity: 55},
	{Name: "Thane, Maharashtra", Latitude: 19.2183, Longitude: 72.9781, BaseTemperature: 28, BaseHumidity: 72},
	{Name: "Navi Mumbai, Maharashtra", Latitude: 19.0330, Longitude: 73.0297, BaseTemperature: 28, BaseHumidity: 70},
	{Name: "Imphal, Manipur", Latitude: 24.8170, Longitude: 93.9368, BaseTemperature: 22, BaseHumidity: 70},
	{Name: "Shillong, Meghalaya", Latitude: 25.5788, Longitude: 91.8933, BaseTemperature: 18, BaseHumidity: 80},
	{Name: "Aizawl, Mizoram", Latitude: 23.7271, Longitude: 92.7176, BaseTemperature: 20, BaseHumidity: 75},
	{Name: "Kohima, Nagaland", Latitude: 25.6751, Longitude: 94.1086, BaseTemperature: 18, BaseHumidity: 72},
	{Name: "Agartala, Tripura", Latitude: 23.8315, Longitude: 91.2868, BaseTemperature: 26, BaseHumidity: 78},
	{Name: "Gangtok, Sikkim", Latitude: 27.3389, Longitude: 88.6065, BaseTemperature: 14, BaseHumidity: 75},
	{Name: "Itanagar, Arunachal Pradesh", Latitude: 27.0844, Longitude: 93.6053, BaseTemperature: 20, BaseHumidity: 72},
	{Name: "Port Blair, Andaman & Nicobar", Latitude: 11.6234, Longitude: 92.7265, BaseTemperature: 28, BaseHumidity: 82},
	{Name: "Puducherry", Latitude: 11.9416, Longitude: 79.8083, BaseTemperature: 29, BaseHumidity: 75},
	{Name: "Daman", Latitude: 20.3974, Longitude: 72.8328, BaseTemperature: 28, BaseHumidity: 70},
	{Name: "Leh, Ladakh", Latitude: 34.1526, Longitude: 77.5771, BaseTemperature: 8, BaseHumidity: 30},
}

// LookupLocation finds a location by its full name, or by the city part
// before the comma, ignoring case.
func LookupLocation(name string) (Location, bool) {
	name = strings.TrimSpace(name)
	for _, l := range Locations {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	for _, l := range Locations {
		city, _, _ := strings.Cut(l.Name, ",")
		if strings.EqualFold(city, name) {
			return l, true
		}
	}
	return Location{}, false
}

// Ticker is one refresh of the live weather strip.
type Ticker struct {
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	UVIndex     float64   `json:"uv_index"`
	WindKmh     float64   `json:"wind_kmh"`
	SolarIndex  float64   `json:"solar_index"`
	CloudCover  float64   `json:"cloud_cover"`
}

// NewTicker draws a ticker around loc's typical weather: temperature ±2°C,
// humidity ±5%, UV 6±1, wind 12±3 km/h and a solar index of 75±10 whose
// complement is the cloud cover.
func NewTicker(src rand.Source, loc Location, now time.Time) Ticker {
	u := func(lo, hi float64) float64 {
		return distuv.Uniform{Min: lo, Max: hi, Src: src}.Rand()
	}
	t := Ticker{
		Location:    loc.Name,
		Timestamp:   now,
		Temperature: loc.BaseTemperature + u(-2, 2),
		Humidity:    loc.BaseHumidity + u(-5, 5),
		UVIndex:     6 + u(-1, 1),
		WindKmh:     12 + u(-3, 3),
		SolarIndex:  75 + u(-10, 10),
	}
	t.CloudCover = 100 - t.SolarIndex
	return t
}

// Conditions returns the ticker as forecast input.
func (t Ticker) Conditions() Conditions {
	return Conditions{Temperature: t.Temperature, CloudCover: t.CloudCover, Humidity: t.Humidity}
}
