// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/mpu9150/internal/app"
	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./mpu9150_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting MPU9150 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	allowed, err := config.ParseRegisterRanges(cfg.RegisterDebugAllowedRanges)
	if err != nil {
		log.Fatalf("failed to parse allowed ranges: %v", err)
	}
	if len(allowed) == 0 {
		log.Println("Warning: REGISTER_DEBUG_ALLOWED_RANGES is empty, MPU9150 writes are disabled")
	}

	src, err := sensors.NewIMUSource("debug", cfg)
	if err != nil {
		log.Fatalf("failed to initialize IMU: %v", err)
	}
	defer src.Close()

	dbg := app.NewRegisterDebugger(src, allowed)
	http.Handle("/ws", dbg)

	// API endpoint for live IMU data
	http.HandleFunc("/api/imu", dbg.HandleIMUData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
