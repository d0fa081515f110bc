package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attitude_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `# test configuration
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_PRODUCER=attitude-producer

TOPIC_ATTITUDE=sensors/attitude
TOPIC_IMU_RAW=sensors/imu/raw
TOPIC_HEADING=sensors/heading
TOPIC_ENV=sensors/env

IMU_I2C_BUS=1
IMU_I2C_ADDR=0x68
IMU_ACCEL_RANGE=0
IMU_GYRO_RANGE=0
IMU_DLPF_CFG=6
IMU_SAMPLE_RATE_HZ=25
MADGWICK_BETA=0.1

CONSOLE_LOG_INTERVAL=1000
WEB_SERVER_PORT=8080
REGISTER_DEBUG_ALLOWED_RANGES=0x1A-0x1C,0x6B
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.TopicAttitude != "sensors/attitude" {
		t.Errorf("TopicAttitude = %q", cfg.TopicAttitude)
	}
	if cfg.IMUI2CAddr != 0x68 {
		t.Errorf("IMUI2CAddr = 0x%02X, want 0x68", cfg.IMUI2CAddr)
	}
	if cfg.IMUSampleRateHz != 25 {
		t.Errorf("IMUSampleRateHz = %d, want 25", cfg.IMUSampleRateHz)
	}
	if cfg.IMUDLPFConfig != 6 {
		t.Errorf("IMUDLPFConfig = %d, want 6", cfg.IMUDLPFConfig)
	}
	if cfg.MadgwickBeta != 0.1 {
		t.Errorf("MadgwickBeta = %v, want 0.1", cfg.MadgwickBeta)
	}
	if cfg.ConsoleLogInterval != 1000 {
		t.Errorf("ConsoleLogInterval = %d, want 1000", cfg.ConsoleLogInterval)
	}
}

func TestLoadMissingRequiredKey(t *testing.T) {
	content := strings.ReplaceAll(validConfig, "IMU_SAMPLE_RATE_HZ=25\n", "")
	_, err := Load(writeConfig(t, content))
	if err == nil || !strings.Contains(err.Error(), "IMU_SAMPLE_RATE_HZ") {
		t.Fatalf("err = %v, want missing IMU_SAMPLE_RATE_HZ", err)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"BOGUS_KEY=1\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("err = %v, want unknown key rejection", err)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	cases := []struct{ name, line string }{
		{"accel range", "IMU_ACCEL_RANGE=4"},
		{"gyro range", "IMU_GYRO_RANGE=-1"},
		{"dlpf", "IMU_DLPF_CFG=8"},
		{"sample rate low", "IMU_SAMPLE_RATE_HZ=0"},
		{"sample rate high", "IMU_SAMPLE_RATE_HZ=2000"},
		{"beta zero", "MADGWICK_BETA=0"},
		{"beta high", "MADGWICK_BETA=1.5"},
		{"i2c addr", "IMU_I2C_ADDR=0x42"},
		{"display content", "DISPLAY_CONTENT=gps"},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, validConfig+tc.line+"\n")); err == nil {
			t.Errorf("%s: %q accepted, want rejection", tc.name, tc.line)
		}
	}
}

func TestLoadBadLine(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"NOT A KEY VALUE PAIR\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config line") {
		t.Fatalf("err = %v, want line parse failure", err)
	}
}

func TestRegisterWriteAllowed(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	allowed := []byte{0x1A, 0x1B, 0x1C, 0x6B}
	for _, addr := range allowed {
		if !cfg.RegisterWriteAllowed(addr) {
			t.Errorf("0x%02X not writable, want allowed", addr)
		}
	}
	denied := []byte{0x19, 0x1D, 0x6C, 0x75, 0x00}
	for _, addr := range denied {
		if cfg.RegisterWriteAllowed(addr) {
			t.Errorf("0x%02X writable, want denied", addr)
		}
	}
}

func TestRegisterWriteAllowedEmptyList(t *testing.T) {
	content := strings.ReplaceAll(validConfig, "REGISTER_DEBUG_ALLOWED_RANGES=0x1A-0x1C,0x6B\n", "")
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RegisterWriteAllowed(0x1A) {
		t.Fatal("write allowed with no configured ranges")
	}
}

func TestParseRegisterRangesRejectsReversed(t *testing.T) {
	if _, err := parseRegisterRanges("0x1C-0x1A"); err == nil {
		t.Fatal("reversed range accepted")
	}
}
