package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/attitude_tracker/internal/app"
	"github.com/relabs-tech/attitude_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "./attitude_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting attitude-tracker heading producer (NMEA → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunHeadingProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
