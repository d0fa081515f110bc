package sensors

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/env"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

var (
	bmpDev     *bmxx80.Dev
	bmpOnce    sync.Once
	bmpInitErr error
)

// initBMP initializes the BMP sensor once
func initBMP() {
	bmpOnce.Do(func() {
		cfg := config.Get()

		if cfg.EnvSPIDevice == "" {
			bmpInitErr = fmt.Errorf("ENV_SPI_DEVICE not configured")
			return
		}

		// Initialize periph host
		if _, err := host.Init(); err != nil {
			bmpInitErr = fmt.Errorf("periph host init: %w", err)
			return
		}

		bus, err := spireg.Open(cfg.EnvSPIDevice)
		if err != nil {
			bmpInitErr = fmt.Errorf("BMP SPI open: %w", err)
			return
		}

		bmpDev, err = bmxx80.NewSPI(bus, &bmxx80.DefaultOpts)
		if err != nil {
			bmpInitErr = fmt.Errorf("BMP init: %w", err)
			return
		}

		fmt.Println("BMP sensor initialized successfully")
	})
}

// ReadEnv reads the BMP sensor (temp + pressure).
func ReadEnv() (env.Sample, error) {
	initBMP()
	if bmpInitErr != nil {
		return env.Sample{}, bmpInitErr
	}

	var e physic.Env
	if err := bmpDev.Sense(&e); err != nil {
		return env.Sample{}, fmt.Errorf("BMP sense: %w", err)
	}

	return env.Sample{
		Source:      "bmp280",
		Temperature: e.Temperature.Celsius(),
		Pressure:    float64(e.Pressure) / float64(physic.Pascal),
	}, nil
}
