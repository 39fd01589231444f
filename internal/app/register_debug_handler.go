// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/mpu9150"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RegisterResponse is every message the debug tool sends.
type RegisterResponse struct {
	Type        string                 `json:"type"`             // "register_data", "register_map", "status", "error", "export_config"
	Device      string                 `json:"device,omitempty"` // "mpu9150" or "ak8975"
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	TimeoutMS   int64                  `json:"timeout_ms,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Config      string                 `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
}

// RegisterConfigFile is the JSON document produced by export_config.
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// RegisterCmd is the union of all request fields.
type RegisterCmd struct {
	Action    string  `json:"action"`
	Device    string  `json:"device"`
	Address   string  `json:"addr"`
	Value     string  `json:"value"`
	TimeoutMS float64 `json:"timeout_ms"`
}

// RegisterDebugger serializes register access to one IMU for any number of
// WebSocket clients.
type RegisterDebugger struct {
	mu      sync.Mutex
	src     *sensors.IMUSource
	allowed []config.RegisterRange
	now     func() time.Time
}

// NewRegisterDebugger allows MPU9150 writes only inside allowed.
func NewRegisterDebugger(src *sensors.IMUSource, allowed []config.RegisterRange) *RegisterDebugger {
	return &RegisterDebugger{src: src, allowed: allowed, now: time.Now}
}

type deviceInfo struct {
	chip mpu9150.Chip
	regs []sensors.RegisterInfo
}

func lookupDevice(name string) (deviceInfo, error) {
	switch name {
	case "", "mpu9150":
		return deviceInfo{mpu9150.ChipMPU, sensors.MPU9150RegisterMap()}, nil
	case "ak8975":
		return deviceInfo{mpu9150.ChipMag, sensors.AK8975RegisterMap()}, nil
	}
	return deviceInfo{}, fmt.Errorf("unknown device: %s", name)
}

// ServeHTTP upgrades to a WebSocket and answers commands until the client
// goes away.
func (d *RegisterDebugger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Send register map on connection (MPU9150 by default)
	if err := conn.WriteJSON(d.Handle(RegisterCmd{Action: "get_map"})); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(d.Handle(cmd)); err != nil {
			log.Printf("register_debug: write error: %v", err)
			return
		}
	}
}

// Handle executes one command and returns the reply.
func (d *RegisterDebugger) Handle(cmd RegisterCmd) RegisterResponse {
	dev, err := lookupDevice(cmd.Device)
	if err != nil {
		return errorResponse(err.Error())
	}
	device := dev.chip.String()

	d.mu.Lock()
	defer d.mu.Unlock()

	switch cmd.Action {
	case "get_map":
		return RegisterResponse{Type: "register_map", Device: device, RegisterMap: dev.regs}
	case "read":
		return d.read(dev, cmd)
	case "read_all":
		regs, err := d.readAll(dev)
		if err != nil {
			return errorResponse(fmt.Sprintf("read all error: %v", err))
		}
		return RegisterResponse{Type: "register_data", Device: device, Registers: regs, Timestamp: d.stamp()}
	case "write":
		return d.write(dev, cmd)
	case "init":
		return d.reinit(cmd)
	case "export_config":
		return d.export(dev)
	case "":
		return errorResponse("missing or invalid action field")
	}
	return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
}

func (d *RegisterDebugger) read(dev deviceInfo, cmd RegisterCmd) RegisterResponse {
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %q", cmd.Address))
	}
	var b [1]byte
	if err := d.src.Dev().ReadRegisters(dev.chip, addr, b[:]); err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    dev.chip.String(),
		Address:   hexByte(addr),
		Value:     hexByte(b[0]),
		Timestamp: d.stamp(),
	}
}

func (d *RegisterDebugger) readAll(dev deviceInfo) (map[string]string, error) {
	out := make(map[string]string, len(dev.regs))
	for _, r := range dev.regs {
		addr, err := parseHexByte(r.Address)
		if err != nil {
			return nil, err
		}
		var b [1]byte
		if err := d.src.Dev().ReadRegisters(dev.chip, addr, b[:]); err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, err)
		}
		out[hexByte(addr)] = hexByte(b[0])
	}
	return out, nil
}

func (d *RegisterDebugger) write(dev deviceInfo, cmd RegisterCmd) RegisterResponse {
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %q", cmd.Address))
	}
	value, err := parseHexByte(cmd.Value)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %q", cmd.Value))
	}
	if dev.chip == mpu9150.ChipMPU {
		if !isRegisterWritable(addr, d.allowed) {
			return errorResponse(fmt.Sprintf("register 0x%02X not in allowed write ranges", addr))
		}
	} else if !mapWritable(dev.regs, addr) {
		return errorResponse(fmt.Sprintf("register 0x%02X is read-only", addr))
	}
	if err := d.src.Dev().WriteRegister(dev.chip, addr, value); err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    dev.chip.String(),
		Address:   hexByte(addr),
		Value:     hexByte(value),
		Timestamp: d.stamp(),
		Message:   "write successful",
	}
}

func (d *RegisterDebugger) reinit(cmd RegisterCmd) RegisterResponse {
	timeout := time.Duration(cmd.TimeoutMS * float64(time.Millisecond))
	if err := d.src.Reinit(timeout); err != nil {
		return errorResponse(fmt.Sprintf("reinit error: %v", err))
	}
	return RegisterResponse{
		Type:      "status",
		Device:    mpu9150.ChipMPU.String(),
		Status:    "initialized",
		TimeoutMS: d.src.Dev().Timeout().Milliseconds(),
		Message:   "IMU reinitialized successfully",
	}
}

func (d *RegisterDebugger) export(dev deviceInfo) RegisterResponse {
	regs := make(map[string]string)
	for _, r := range dev.regs {
		if r.Access != "RW" {
			continue
		}
		addr, err := parseHexByte(r.Address)
		if err != nil {
			return errorResponse(err.Error())
		}
		var b [1]byte
		if err := d.src.Dev().ReadRegisters(dev.chip, addr, b[:]); err != nil {
			return errorResponse(fmt.Sprintf("export error: %s: %v", r.Name, err))
		}
		regs[hexByte(addr)] = hexByte(b[0])
	}

	now := d.now()
	file := RegisterConfigFile{
		Version:   1,
		Device:    dev.chip.String(),
		Timestamp: now.Format(time.RFC3339),
		Registers: regs,
	}
	configJSON, err := json.Marshal(file)
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}
	return RegisterResponse{
		Type:     "export_config",
		Device:   file.Device,
		Message:  "config exported",
		Config:   string(configJSON),
		Filename: fmt.Sprintf("%s_%s_registers.json", file.Device, now.Format("20060102_150405")),
	}
}

// HandleIMUData serves a fresh scaled reading as JSON.
func (d *RegisterDebugger) HandleIMUData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	d.mu.Lock()
	sc, err := d.src.ReadScaled()
	d.mu.Unlock()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(sc)
}

func (d *RegisterDebugger) stamp() string {
	return d.now().Format(time.RFC3339)
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{Type: "error", Message: message}
}

// parseHexByte accepts "0x1B", "1B" or "0X1b".
func parseHexByte(s string) (byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 8)
	return byte(v), err
}

func hexByte(v byte) string {
	return fmt.Sprintf("0x%02X", v)
}

// isRegisterWritable reports whether addr falls inside one of the ranges.
// No ranges means no writes.
func isRegisterWritable(addr byte, ranges []config.RegisterRange) bool {
	for _, r := range ranges {
		if addr >= r.Lo && addr <= r.Hi {
			return true
		}
	}
	return false
}

func mapWritable(regs []sensors.RegisterInfo, addr byte) bool {
	for _, r := range regs {
		if a, err := parseHexByte(r.Address); err == nil && a == addr {
			return strings.Contains(r.Access, "W")
		}
	}
	return false
}
