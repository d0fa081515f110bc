package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/imu"
	"github.com/relabs-tech/attitude_tracker/internal/orientation"
)

// displayState buffers the most recent sample of whichever topic the
// display is following. MQTT callbacks write, the draw loop reads.
type displayState struct {
	mu       sync.RWMutex
	raw      imu.RawSample
	rawValid bool
	est      orientation.Estimate
	estValid bool
}

func (d *displayState) setRaw(r imu.RawSample) {
	d.mu.Lock()
	d.raw, d.rawValid = r, true
	d.mu.Unlock()
}

func (d *displayState) latestRaw() (imu.RawSample, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.raw, d.rawValid
}

func (d *displayState) setEstimate(e orientation.Estimate) {
	d.mu.Lock()
	d.est, d.estValid = e, true
	d.mu.Unlock()
}

func (d *displayState) latestEstimate() (orientation.Estimate, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.est, d.estValid
}

// screen composes one 128x64 monochrome frame.
type screen struct {
	img *image1bit.VerticalLSB
	d   *font.Drawer
}

func newScreen() *screen {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	return &screen{
		img: img,
		d: &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{image1bit.On},
			Face: basicfont.Face7x13,
		},
	}
}

func (s *screen) line(x, baseline int, text string) {
	s.d.Dot = fixed.P(x, baseline)
	s.d.DrawBytes([]byte(text))
}

func (s *screen) flush(dev *ssd1306.Dev) error {
	return dev.Draw(dev.Bounds(), s.img, image.Point{})
}

func RunDisplay() error {
	cfg := config.Get()

	content := cfg.DisplayContent
	if content == "" {
		content = "attitude"
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// The SSD1306 sits at the fixed 0x3C address.
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: splash draw error: %v", err)
	}

	state := &displayState{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeForContent(client, content, state, cfg); err != nil {
		return fmt.Errorf("failed to subscribe for display: %w", err)
	}

	refresh := cfg.DisplayUpdateInterval
	if refresh <= 0 {
		refresh = 500
	}
	ticker := time.NewTicker(time.Duration(refresh) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		var err error
		switch content {
		case "imu_raw":
			raw, ok := state.latestRaw()
			err = renderRaw(dev, raw, ok)
		case "attitude":
			est, ok := state.latestEstimate()
			err = renderAttitude(dev, est, ok)
		}
		if err != nil {
			log.Printf("display: draw error: %v", err)
		}
	}

	return nil
}

// subscribeJSON wires one topic to a decode callback and logs bad payloads
// instead of dropping the subscription.
func subscribeJSON(client mqtt.Client, topic string, apply func([]byte) error) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := apply(msg.Payload()); err != nil {
			log.Printf("display: payload from %s rejected: %v", topic, err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", topic)
	return nil
}

func subscribeForContent(client mqtt.Client, content string, state *displayState, cfg *config.Config) error {
	switch content {
	case "imu_raw":
		return subscribeJSON(client, cfg.TopicIMURaw, func(payload []byte) error {
			var raw imu.RawSample
			if err := json.Unmarshal(payload, &raw); err != nil {
				return err
			}
			state.setRaw(raw)
			return nil
		})
	case "attitude":
		return subscribeJSON(client, cfg.TopicAttitude, func(payload []byte) error {
			var e orientation.Estimate
			if err := json.Unmarshal(payload, &e); err != nil {
				return err
			}
			state.setEstimate(e)
			return nil
		})
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
}

func renderRaw(dev *ssd1306.Dev, raw imu.RawSample, ok bool) error {
	scr := newScreen()
	if !ok {
		scr.line(0, 26, "IMU Raw")
		scr.line(0, 39, "Waiting...")
		return scr.flush(dev)
	}
	scr.line(0, 13, fmt.Sprintf("A %6d %6d", raw.Ax, raw.Ay))
	scr.line(0, 26, fmt.Sprintf("  %6d", raw.Az))
	scr.line(0, 39, fmt.Sprintf("G %6d %6d", raw.Gx, raw.Gy))
	scr.line(0, 52, fmt.Sprintf("  %6d", raw.Gz))
	return scr.flush(dev)
}

func renderAttitude(dev *ssd1306.Dev, e orientation.Estimate, ok bool) error {
	scr := newScreen()
	if !ok {
		scr.line(0, 26, "Attitude")
		scr.line(0, 39, "Waiting...")
		return scr.flush(dev)
	}
	scr.line(0, 13, fmt.Sprintf("Roll %8.1f", e.Roll))
	scr.line(0, 26, fmt.Sprintf("Pitch %7.1f", e.Pitch))
	scr.line(0, 39, fmt.Sprintf("Hdg %9.1f", e.Heading))
	return scr.flush(dev)
}

func showSplash(dev *ssd1306.Dev) error {
	scr := newScreen()
	scr.line(10, 26, "Attitude Pi")
	scr.line(5, 43, "Waiting for")
	scr.line(25, 56, "samples")
	return scr.flush(dev)
}
