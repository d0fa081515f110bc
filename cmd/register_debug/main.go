// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/relabs-tech/attitude_tracker/internal/app"
	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./attitude_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting MPU6050 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The tool can still serve once the sensor shows up, so init trouble
	// is a warning here, not fatal.
	mgr := sensors.GetIMUManager()
	if err := mgr.Init(); err != nil {
		log.Printf("warning: IMU init: %v", err)
	}
	if !mgr.IsAvailable() {
		log.Println("warning: IMU not available yet")
	}

	http.HandleFunc("/ws", app.HandleRegisterDebugWS)
	http.HandleFunc("/api/imu", app.HandleIMUData)
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := ":8081"
	log.Printf("register debug tool on http://localhost%s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
