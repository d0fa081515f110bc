package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// RegisterRange is one inclusive span of register addresses that the
// register debug tool may write to.
type RegisterRange struct {
	Start byte
	End   byte
}

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string
	MQTTClientIDHeading  string

	// Topics
	TopicAttitude string
	TopicIMURaw   string
	TopicHeading  string
	TopicEnv      string

	// IMU Hardware
	IMUI2CBus  string // "" selects the first available bus
	IMUI2CAddr uint16 // 0x68 (AD0 low) or 0x69 (AD0 high)

	// IMU Sensor Ranges
	IMUAccelRange byte // FS_SEL index, ±2g at 0 doubling up to ±16g at 3
	IMUGyroRange  byte // FS_SEL index, ±250°/s at 0 doubling up to ±2000°/s at 3

	// IMU Sampling
	IMUDLPFConfig   byte    // Digital Low Pass Filter configuration (0-7)
	IMUSampleRateHz int     // fused pipeline rate in ticks per second
	MadgwickBeta    float64 // filter gain; 0 keeps the filter's default

	// Environment sensor
	EnvSPIDevice       string // "" disables the env publisher
	EnvPublishInterval int    // milliseconds

	// Heading reference (GPS)
	HeadingSerialPort string
	HeadingBaudRate   int

	// Timing
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // what to show: "attitude" or "imu_raw"

	// Register debug
	RegisterDebugAllowedRanges []RegisterRange
}

// One Config per process. InitGlobal is the only writer and runs at most
// once behind configOnce; Get takes the read lock so any number of
// goroutines can read concurrently. globalConfig stays unexported so no
// other package can swap or mutate it around the lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load parses a KEY=VALUE file into a Config. Blank lines and #-comments
// are skipped. Unknown keys, malformed values, and missing required keys
// are all errors.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		if err := cfg.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// boundedInt parses a decimal value and enforces an inclusive range.
func boundedInt(key, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, n)
	}
	return n, nil
}

// plainInt parses a decimal value with no range constraint.
func plainInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// setValue routes one key to its field, validating as it goes.
func (c *Config) setValue(key, value string) error {
	var n int
	var err error

	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_HEADING":
		c.MQTTClientIDHeading = value

	// Topics
	case "TOPIC_ATTITUDE":
		c.TopicAttitude = value
	case "TOPIC_IMU_RAW":
		c.TopicIMURaw = value
	case "TOPIC_HEADING":
		c.TopicHeading = value
	case "TOPIC_ENV":
		c.TopicEnv = value

	// IMU Hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		// The MPU-6050 only decodes these two, selected by the AD0 pin.
		if addr != 0x68 && addr != 0x69 {
			return fmt.Errorf("IMU_I2C_ADDR must be 0x68 or 0x69, got 0x%02X", addr)
		}
		c.IMUI2CAddr = uint16(addr)

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		if n, err = boundedInt(key, value, 0, 3); err != nil {
			return err
		}
		c.IMUAccelRange = byte(n)
	case "IMU_GYRO_RANGE":
		if n, err = boundedInt(key, value, 0, 3); err != nil {
			return err
		}
		c.IMUGyroRange = byte(n)

	// IMU Sampling
	case "IMU_DLPF_CFG":
		if n, err = boundedInt(key, value, 0, 7); err != nil {
			return err
		}
		c.IMUDLPFConfig = byte(n)
	case "IMU_SAMPLE_RATE_HZ":
		if n, err = boundedInt(key, value, 1, 1000); err != nil {
			return err
		}
		c.IMUSampleRateHz = n
	case "MADGWICK_BETA":
		beta, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MADGWICK_BETA %q: %w", value, err)
		}
		if beta <= 0 || beta > 1 {
			return fmt.Errorf("MADGWICK_BETA must be in (0, 1], got %v", beta)
		}
		c.MadgwickBeta = beta

	// Environment sensor
	case "ENV_SPI_DEVICE":
		c.EnvSPIDevice = value
	case "ENV_PUBLISH_INTERVAL":
		if c.EnvPublishInterval, err = plainInt(key, value); err != nil {
			return err
		}

	// Heading reference (GPS)
	case "HEADING_SERIAL_PORT":
		c.HeadingSerialPort = value
	case "HEADING_BAUD_RATE":
		if c.HeadingBaudRate, err = plainInt(key, value); err != nil {
			return err
		}

	// Timing
	case "CONSOLE_LOG_INTERVAL":
		if c.ConsoleLogInterval, err = plainInt(key, value); err != nil {
			return err
		}

	// Web Server
	case "WEB_SERVER_PORT":
		if c.WebServerPort, err = plainInt(key, value); err != nil {
			return err
		}

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		if c.DisplayUpdateInterval, err = plainInt(key, value); err != nil {
			return err
		}
	case "DISPLAY_CONTENT":
		if value != "attitude" && value != "imu_raw" {
			return fmt.Errorf("DISPLAY_CONTENT must be \"attitude\" or \"imu_raw\", got %q", value)
		}
		c.DisplayContent = value

	// Register debug
	case "REGISTER_DEBUG_ALLOWED_RANGES":
		ranges, err := parseRegisterRanges(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_ALLOWED_RANGES %q: %w", value, err)
		}
		c.RegisterDebugAllowedRanges = ranges

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// parseRegisterRanges parses a comma-separated list of hex spans,
// e.g. "0x1A-0x1C,0x6B". A bare address is a one-register span.
func parseRegisterRanges(value string) ([]RegisterRange, error) {
	var ranges []RegisterRange
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		start, err := strconv.ParseUint(strings.TrimSpace(bounds[0]), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("bad range start %q: %w", bounds[0], err)
		}
		end := start
		if len(bounds) == 2 {
			end, err = strconv.ParseUint(strings.TrimSpace(bounds[1]), 0, 8)
			if err != nil {
				return nil, fmt.Errorf("bad range end %q: %w", bounds[1], err)
			}
		}
		if end < start {
			return nil, fmt.Errorf("range %q ends before it starts", part)
		}
		ranges = append(ranges, RegisterRange{Start: byte(start), End: byte(end)})
	}
	return ranges, nil
}

// RegisterWriteAllowed reports whether addr falls inside one of the
// configured writable spans. An empty list allows nothing.
func (c *Config) RegisterWriteAllowed(addr byte) bool {
	for _, r := range c.RegisterDebugAllowedRanges {
		if addr >= r.Start && addr <= r.End {
			return true
		}
	}
	return false
}

// validate rejects a Config missing any key the pipeline cannot run without.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicAttitude == "" {
		return fmt.Errorf("TOPIC_ATTITUDE is required")
	}
	if c.TopicIMURaw == "" {
		return fmt.Errorf("TOPIC_IMU_RAW is required")
	}
	if c.IMUSampleRateHz == 0 {
		return fmt.Errorf("IMU_SAMPLE_RATE_HZ is required")
	}
	if c.ConsoleLogInterval == 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	return nil
}

// InitGlobal loads the file at configPath into the process-wide Config.
// Only the first call does any work and sees Load's error; later calls
// are no-ops that return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the process-wide Config, or nil before InitGlobal runs.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
