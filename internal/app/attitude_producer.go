package app

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/fusion"
	"github.com/relabs-tech/attitude_tracker/internal/mpu6050"
	"github.com/relabs-tech/attitude_tracker/internal/orientation"
	"github.com/relabs-tech/attitude_tracker/internal/sensors"
	"github.com/relabs-tech/attitude_tracker/internal/tracker"
)

func RunAttitudeProducer() error {
	log.Println("starting attitude-tracker producer")

	cfg := config.Get()

	// --- Initialize hardware ---
	if _, err := host.Init(); err != nil {
		log.Fatalf("failed to initialize periph host: %v", err)
		return err
	}

	bus, err := i2creg.Open(cfg.IMUI2CBus)
	if err != nil {
		log.Fatalf("failed to open I2C bus %q: %v", cfg.IMUI2CBus, err)
		return err
	}
	defer bus.Close()

	// --- Build the fusion filter and the tracker ---
	filter := fusion.NewMadgwick(float64(cfg.IMUSampleRateHz))
	if cfg.MadgwickBeta > 0 {
		filter.SetBeta(cfg.MadgwickBeta)
	}

	trk, err := tracker.New(bus, tracker.Opts{
		Addr:          cfg.IMUI2CAddr,
		SampleRateHz:  cfg.IMUSampleRateHz,
		AccelRange:    mpu6050.AccelRange(cfg.IMUAccelRange),
		GyroRange:     mpu6050.GyroRange(cfg.IMUGyroRange),
		LowPassFilter: cfg.IMUDLPFConfig,
		Filter:        filter,
	})
	if err != nil {
		log.Fatalf("failed to initialize tracker: %v", err)
		return err
	}
	log.Printf("tracker ready: %d Hz, accel range %d, gyro range %d, dlpf %d",
		cfg.IMUSampleRateHz, cfg.IMUAccelRange, cfg.IMUGyroRange, cfg.IMUDLPFConfig)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting sample loop")

	envEnabled := cfg.EnvSPIDevice != "" && cfg.TopicEnv != "" && cfg.EnvPublishInterval > 0

	var lastLog time.Time
	var lastEnv time.Time
	logInterval := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond
	envInterval := time.Duration(cfg.EnvPublishInterval) * time.Millisecond

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Poll far above the sample rate; the tracker's gate sets the pace.
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		var t time.Time
		select {
		case <-sigCh:
			log.Println("producer: shutting down")
			if err := trk.Halt(); err != nil {
				log.Printf("producer: sensor halt: %v", err)
			}
			return nil
		case t = <-ticker.C:
		}

		tick, err := trk.Poll()
		if err != nil {
			log.Printf("tick error: %v", err)
			continue
		}
		if tick == nil {
			continue
		}

		est := trk.Estimate()

		// 1) Fused attitude
		if payload, err := json.Marshal(est); err != nil {
			log.Printf("json marshal error (attitude): %v", err)
		} else {
			if token := client.Publish(cfg.TopicAttitude, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (attitude): %v", token.Error())
				continue
			}
		}

		// 2) Raw counts, for debugging and replay
		if payload, err := json.Marshal(tick.Raw); err != nil {
			log.Printf("json marshal error (imu raw): %v", err)
		} else {
			if token := client.Publish(cfg.TopicIMURaw, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (imu raw): %v", token.Error())
				continue
			}
		}

		// 3) Environment (BMP), at its own slower cadence
		if envEnabled && t.Sub(lastEnv) >= envInterval {
			lastEnv = t
			if envSample, err := sensors.ReadEnv(); err != nil {
				log.Printf("env read error: %v", err)
			} else if payload, err := json.Marshal(envSample); err != nil {
				log.Printf("env marshal error: %v", err)
			} else {
				if token := client.Publish(cfg.TopicEnv, 0, true, payload); token.Wait() && token.Error() != nil {
					log.Printf("MQTT publish error (env): %v", token.Error())
				}
			}
		}

		// Throttled tick log with an accel-only cross-check of the fused
		// angles.
		if t.Sub(lastLog) >= logInterval {
			lastLog = t
			tilt := orientation.TiltEstimate(float64(tick.Sample.Ax), float64(tick.Sample.Ay), float64(tick.Sample.Az))
			log.Printf("%s tick: attitude H=%.2f P=%.2f R=%.2f | accel ax=%d ay=%d az=%d | gyro gx=%d gy=%d gz=%d | tilt P=%.2f R=%.2f",
				t.Format(time.RFC3339),
				est.Heading, est.Pitch, est.Roll,
				tick.Raw.Ax, tick.Raw.Ay, tick.Raw.Az,
				tick.Raw.Gx, tick.Raw.Gy, tick.Raw.Gz,
				tilt.Pitch, tilt.Roll,
			)
		}
	}
}
