package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/orientation"
)

// Publishes a synthetic attitude stream so the console, web, and display
// consumers can run without the tracker or any hardware.
func main() {
	configPath := flag.String("config", "./attitude_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting attitude-tracker MQTT producer (mock)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	client := mqtt.NewClient(mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("attitude-producer-mock"))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
	}
	defer client.Disconnect(250)

	src := orientation.NewMockSource()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		est, err := src.Next()
		if err != nil {
			log.Printf("mock source error: %v", err)
			continue
		}
		publish(client, cfg.TopicAttitude, est)
	}
}

func publish(client mqtt.Client, topic string, est orientation.Estimate) {
	payload, err := json.Marshal(est)
	if err != nil {
		log.Printf("json marshal error: %v", err)
		return
	}
	if token := client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("publish error: %v", token.Error())
		return
	}
	log.Printf("published attitude: %+v", est)
}
