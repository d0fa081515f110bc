package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/heading"
)

// RunHeadingProducer reads NMEA off the GPS serial port and republishes
// each RMC course-over-ground as a heading reference on MQTT. The fused
// heading is gyro-only and drifts; consumers hold it against this feed.
func RunHeadingProducer() error {
	cfg := config.Get()

	if cfg.HeadingSerialPort == "" {
		return fmt.Errorf("HEADING_SERIAL_PORT is required for the heading producer")
	}
	if cfg.TopicHeading == "" {
		return fmt.Errorf("TOPIC_HEADING is required for the heading producer")
	}
	baud := cfg.HeadingBaudRate
	if baud == 0 {
		baud = 9600
	}

	client := mqtt.NewClient(mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDHeading))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("heading producer connected to MQTT broker at %s", cfg.MQTTBroker)

	// 8N1, blocking on the first byte of each read.
	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.HeadingSerialPort,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	})
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("heading serial port opened on %s at %d baud", cfg.HeadingSerialPort, baud)

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			// line noise, or a receiver still warming up
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// partial sentences are routine on a slow link
			continue
		}
		m, ok := sentence.(nmea.RMC)
		if !ok {
			continue
		}

		if err := publishReference(client, cfg.TopicHeading, m); err != nil {
			log.Printf("heading publish error: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("heading read error: %v", err)
		return err
	}
	return nil
}

// publishReference turns one RMC sentence into a retained heading message.
func publishReference(client mqtt.Client, topic string, m nmea.RMC) error {
	ref := heading.Reference{
		Time:       m.Time.String(),
		CourseDeg:  m.Course,
		SpeedKnots: m.Speed,
		Validity:   string(m.Validity),
	}

	payload, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	token := client.Publish(topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}

	log.Printf("published heading reference: %+v", ref)
	return nil
}
