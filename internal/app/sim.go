// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/attitude_tracker/internal/mpu6050"
	"github.com/relabs-tech/attitude_tracker/internal/tracker"
)

// RunSim drives the full sample pipeline against the simulated bus: same
// driver, same scheduler, same filter, no hardware. One line per executed
// tick, heading pitch roll.
func RunSim() error {
	bus := mpu6050.NewSimBus()

	trk, err := tracker.New(bus, tracker.DefaultOpts)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			log.Println("sim: shutting down")
			return trk.Halt()
		default:
		}

		tick, err := trk.Poll()
		if err != nil {
			return err
		}
		if tick == nil {
			time.Sleep(time.Millisecond)
			continue
		}

		fmt.Printf("Orientation: %.2f %.2f %.2f\n", trk.Heading(), trk.Pitch(), trk.Roll())
	}
}
