// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
)

// latestData keeps the most recent messages seen on MQTT.
type latestData struct {
	mu         sync.RWMutex
	pose       orientation.Pose
	havePose   bool
	scaled     imu.Scaled
	haveScaled bool
}

func (l *latestData) setPose(p orientation.Pose) {
	l.mu.Lock()
	l.pose, l.havePose = p, true
	l.mu.Unlock()
}

func (l *latestData) setScaled(s imu.Scaled) {
	l.mu.Lock()
	l.scaled, l.haveScaled = s, true
	l.mu.Unlock()
}

func (l *latestData) handleOrientation(w http.ResponseWriter, r *http.Request) {
	l.mu.RLock()
	p, ok := l.pose, l.havePose
	l.mu.RUnlock()
	writeLatest(w, p, ok)
}

func (l *latestData) handleIMU(w http.ResponseWriter, r *http.Request) {
	l.mu.RLock()
	s, ok := l.scaled, l.haveScaled
	l.mu.RUnlock()
	writeLatest(w, s, ok)
}

func writeLatest(w http.ResponseWriter, v any, ok bool) {
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func newWebMux(l *latestData, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orientation", l.handleOrientation)
	mux.HandleFunc("GET /api/imu", l.handleIMU)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

// RunWeb serves the latest pose and scaled sample as JSON.
func RunWeb() error {
	cfg := config.Get()
	data := &latestData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, cfg.TopicPose, "web", data.setPose); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicIMUScaled, "web", data.setScaled); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(data, "web"))
}
