// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/mpu9150/internal/app"
	"github.com/relabs-tech/mpu9150/internal/config"
)

func main() {
	configPath := flag.String("config", "./mpu9150_config.txt", "path to configuration file")
	rounds := flag.Int("rounds", 10, "number of interrupt/normal comparisons")
	wait := flag.Duration("wait", 400*time.Millisecond, "sampling time before each comparison")
	mag := flag.Bool("mag", false, "run the non-blocking magnetometer test instead")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var err error
	if *mag {
		log.Println("starting MPU9150 magnetometer test")
		err = app.RunMagTest(os.Stdout)
	} else {
		log.Println("starting MPU9150 interrupt vs normal comparison")
		err = app.RunIRQCompare(os.Stdout, *rounds, *wait)
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
