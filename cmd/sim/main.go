// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"log"

	"github.com/relabs-tech/attitude_tracker/internal/app"
)

func main() {
	log.Println("starting attitude-tracker (simulated bus)")

	if err := app.RunSim(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
