package env

// Sample represents a single environmental measurement (BMP280).
type Sample struct {
	Source string `json:"source"` // e.g. "bmp280"

	Temperature float64 `json:"temp_c"`      // °C
	Pressure    float64 `json:"pressure_pa"` // Pa
}
