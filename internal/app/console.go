package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/env"
	"github.com/relabs-tech/attitude_tracker/internal/heading"
	"github.com/relabs-tech/attitude_tracker/internal/imu"
	"github.com/relabs-tech/attitude_tracker/internal/orientation"
)

func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to fused attitude
	attToken := client.Subscribe(cfg.TopicAttitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var e orientation.Estimate
		if err := json.Unmarshal(msg.Payload(), &e); err != nil {
			log.Printf("console: attitude unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ATT]  ROLL=%6.2f  PITCH=%6.2f  HEADING=%7.2f\n",
			e.Roll, e.Pitch, e.Heading,
		)
	})
	attToken.Wait()
	if attToken.Error() != nil {
		return attToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAttitude)

	// Subscribe to raw IMU counts
	imuToken := client.Subscribe(cfg.TopicIMURaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.RawSample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: imu raw unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[IMU]  ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d\n",
			s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz,
		)
	})
	imuToken.Wait()
	if imuToken.Error() != nil {
		return imuToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicIMURaw)

	// Subscribe to the GPS heading reference, when configured
	if cfg.TopicHeading != "" {
		hdgToken := client.Subscribe(cfg.TopicHeading, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var r heading.Reference
			if err := json.Unmarshal(msg.Payload(), &r); err != nil {
				log.Printf("console: heading unmarshal error: %v", err)
				return
			}

			fmt.Printf(
				"[HDG]  time=%s course=%.1f° speed=%.1fkn validity=%s\n",
				r.Time, r.CourseDeg, r.SpeedKnots, r.Validity,
			)
		})
		hdgToken.Wait()
		if hdgToken.Error() != nil {
			return hdgToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicHeading)
	}

	// Subscribe to environment samples, when configured
	if cfg.TopicEnv != "" {
		envToken := client.Subscribe(cfg.TopicEnv, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s env.Sample
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("console: env unmarshal error: %v", err)
				return
			}

			fmt.Printf(
				"[ENV]  source=%s temp=%.1f°C pressure=%.0fPa\n",
				s.Source, s.Temperature, s.Pressure,
			)
		})
		envToken.Wait()
		if envToken.Error() != nil {
			return envToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicEnv)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
