// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/attitude_tracker/internal/config"
	"github.com/relabs-tech/attitude_tracker/internal/mpu6050"
	"github.com/relabs-tech/attitude_tracker/internal/sensors"
)

// registerCommand is the client frame. Action selects the operation,
// addr and value are hex strings like "0x1B" where the action needs them.
type registerCommand struct {
	Action string `json:"action"`
	Addr   string `json:"addr,omitempty"`
	Value  string `json:"value,omitempty"`
}

// registerFrame is the server frame for every reply on the socket.
type registerFrame struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []mpu6050.RegisterInfo `json:"register_map,omitempty"`
}

// registerSnapshot is the exported configuration document.
type registerSnapshot struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

type debugSession struct {
	conn *websocket.Conn
}

func (s *debugSession) send(f registerFrame) error {
	return s.conn.WriteJSON(f)
}

func (s *debugSession) fail(format string, args ...interface{}) {
	s.send(registerFrame{Type: "error", Message: fmt.Sprintf(format, args...)})
}

// HandleRegisterDebugWS upgrades the connection and serves register
// commands until the client goes away.
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s := &debugSession{conn: conn}

	// A fresh client always starts from the register map.
	if err := s.pushRegisterMap(); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd registerCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			return
		}

		switch cmd.Action {
		case "get_map":
			s.pushRegisterMap()
		case "read":
			s.readOne(cmd)
		case "read_all":
			s.readAll()
		case "write":
			s.writeOne(cmd)
		case "init":
			s.reinit()
		case "export_config":
			s.exportSnapshot()
		case "":
			s.fail("missing or invalid action field")
		default:
			s.fail("unknown action: %s", cmd.Action)
		}
	}
}

// parseHexByte accepts "0xNN" register notation from the client.
func parseHexByte(s string) (byte, error) {
	var b byte
	if _, err := fmt.Sscanf(s, "0x%X", &b); err != nil {
		return 0, err
	}
	return b, nil
}

// hexDump renders a raw register dump with both sides in 0xNN form.
func hexDump(regs map[byte]byte) map[string]string {
	out := make(map[string]string, len(regs))
	for addr, val := range regs {
		out[fmt.Sprintf("0x%02X", addr)] = fmt.Sprintf("0x%02X", val)
	}
	return out
}

func (s *debugSession) readOne(cmd registerCommand) {
	if cmd.Addr == "" {
		s.fail("missing addr field")
		return
	}
	addr, err := parseHexByte(cmd.Addr)
	if err != nil {
		s.fail("invalid address format: %s", cmd.Addr)
		return
	}

	value, err := sensors.GetIMUManager().ReadRegister(addr)
	if err != nil {
		s.fail("read error: %v", err)
		return
	}

	s.send(registerFrame{
		Type:      "register_data",
		Device:    "mpu6050",
		Address:   cmd.Addr,
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *debugSession) readAll() {
	regs, err := sensors.GetIMUManager().ReadAllRegisters()
	if err != nil {
		s.fail("read all error: %v", err)
		return
	}

	s.send(registerFrame{
		Type:      "register_data",
		Device:    "mpu6050",
		Registers: hexDump(regs),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *debugSession) writeOne(cmd registerCommand) {
	if cmd.Addr == "" || cmd.Value == "" {
		s.fail("missing addr or value field")
		return
	}
	addr, err := parseHexByte(cmd.Addr)
	if err != nil {
		s.fail("invalid address format: %s", cmd.Addr)
		return
	}
	value, err := parseHexByte(cmd.Value)
	if err != nil {
		s.fail("invalid value format: %s", cmd.Value)
		return
	}

	// Writes land on hardware, so only configured ranges go through.
	if !config.Get().RegisterWriteAllowed(addr) {
		s.fail("register 0x%02X not in allowed write ranges", addr)
		return
	}

	if err := sensors.GetIMUManager().WriteRegister(addr, value); err != nil {
		s.fail("write error: %v", err)
		return
	}

	s.send(registerFrame{
		Type:      "register_data",
		Device:    "mpu6050",
		Address:   cmd.Addr,
		Value:     cmd.Value,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	})
}

func (s *debugSession) reinit() {
	if err := sensors.GetIMUManager().Reinitialize(); err != nil {
		s.fail("reinit error: %v", err)
		return
	}

	s.send(registerFrame{
		Type:    "status",
		Device:  "mpu6050",
		Status:  "initialized",
		Message: "IMU reinitialized successfully",
	})
}

func (s *debugSession) exportSnapshot() {
	regs, err := sensors.GetIMUManager().ReadAllRegisters()
	if err != nil {
		s.fail("export error: %v", err)
		return
	}

	doc, _ := json.Marshal(registerSnapshot{
		Version:   1,
		Device:    "mpu6050",
		Timestamp: time.Now().Format(time.RFC3339),
		Registers: hexDump(regs),
	})

	// The UI turns this frame into a file download.
	s.conn.WriteJSON(map[string]interface{}{
		"type":     "export_config",
		"message":  "config exported",
		"config":   string(doc),
		"filename": fmt.Sprintf("mpu6050_%s_registers.json", time.Now().Format("20060102_150405")),
	})
}

func (s *debugSession) pushRegisterMap() error {
	return s.send(registerFrame{
		Type:        "register_map",
		Device:      "mpu6050",
		RegisterMap: sensors.GetIMUManager().GetRegisterMap(),
	})
}

// HandleIMUData serves one live six-axis snapshot over plain HTTP.
func HandleIMUData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	raw, err := sensors.GetIMUManager().ReadRaw()
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error": "%v"}`, err), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(raw)
}
