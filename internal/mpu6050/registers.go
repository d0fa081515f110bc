// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

// RegisterInfo describes one register for the debug console.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes one field within a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterMap returns metadata for the documented MPU-6050 register set.
// The register debug console sends this to the browser on connect.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Configuration registers
		{Address: "0x19", Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro_Output_Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: "0x1A", Name: "CONFIG", Description: "Configuration (FSYNC, DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz, 7=Reserved"},
			}},
		{Address: "0x1B", Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XG_ST", Description: "X Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YG_ST", Description: "Y Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZG_ST", Description: "Z Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: "0x1C", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XA_ST", Description: "X Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YA_ST", Description: "Y Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZA_ST", Description: "Z Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Address: "0x23", Name: "FIFO_EN", Description: "FIFO Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "TEMP_FIFO_EN", Description: "Temperature FIFO enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "XG_FIFO_EN", Description: "Gyro X FIFO enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "YG_FIFO_EN", Description: "Gyro Y FIFO enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "ZG_FIFO_EN", Description: "Gyro Z FIFO enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "ACCEL_FIFO_EN", Description: "Accel FIFO enable", Values: "0=Disabled, 1=Enabled"},
			}},

		// Interrupt configuration
		{Address: "0x37", Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "INT_LEVEL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "6", Name: "INT_OPEN", Description: "INT pin open drain", Values: "0=Push-pull, 1=Open drain"},
				{Bits: "5", Name: "LATCH_INT_EN", Description: "Latch INT pin", Values: "0=50us pulse, 1=Latch until cleared"},
				{Bits: "4", Name: "INT_RD_CLEAR", Description: "Clear INT on any read", Values: "0=Status read only, 1=Any read"},
				{Bits: "1", Name: "I2C_BYPASS_EN", Description: "I2C bypass enable", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x38", Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "I2C_MST_INT_EN", Description: "I2C master interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x3A", Name: "INT_STATUS", Description: "Interrupt Status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow interrupt status", Values: ""},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready interrupt status", Values: ""},
			}},

		// Sensor data registers (read-only)
		{Address: "0x3B", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x3C", Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x3D", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x3E", Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x3F", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x40", Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x41", Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: "0x42", Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x43", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x44", Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x45", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x46", Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x47", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x48", Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// Power and reset
		{Address: "0x68", Name: "SIGNAL_PATH_RESET", Description: "Signal Path Reset", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "2", Name: "GYRO_RESET", Description: "Reset gyro signal path", Values: ""},
				{Bits: "1", Name: "ACCEL_RESET", Description: "Reset accel signal path", Values: ""},
				{Bits: "0", Name: "TEMP_RESET", Description: "Reset temperature signal path", Values: ""},
			}},
		{Address: "0x6A", Name: "USER_CTRL", Description: "User Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_EN", Description: "FIFO operation enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "2", Name: "FIFO_RESET", Description: "Reset FIFO buffer", Values: ""},
				{Bits: "0", Name: "SIG_COND_RESET", Description: "Reset all signal paths", Values: ""},
			}},
		{Address: "0x6B", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Reset all registers to defaults", Values: ""},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Awake, 1=Sleep"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle between sleep and wake", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Disable temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro"},
			}},
		{Address: "0x6C", Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "LP_WAKE_CTRL", Description: "Low power wake-up frequency", Values: "0=1.25Hz, 1=5Hz, 2=20Hz, 3=40Hz"},
				{Bits: "5", Name: "STBY_XA", Description: "X accel standby", Values: ""},
				{Bits: "4", Name: "STBY_YA", Description: "Y accel standby", Values: ""},
				{Bits: "3", Name: "STBY_ZA", Description: "Z accel standby", Values: ""},
				{Bits: "2", Name: "STBY_XG", Description: "X gyro standby", Values: ""},
				{Bits: "1", Name: "STBY_YG", Description: "Y gyro standby", Values: ""},
				{Bits: "0", Name: "STBY_ZG", Description: "Z gyro standby", Values: ""},
			}},

		// FIFO and identity
		{Address: "0x72", Name: "FIFO_COUNT_H", Description: "FIFO Count High Byte", Access: "R"},
		{Address: "0x73", Name: "FIFO_COUNT_L", Description: "FIFO Count Low Byte", Access: "R"},
		{Address: "0x74", Name: "FIFO_R_W", Description: "FIFO Read/Write", Access: "RW"},
		{Address: "0x75", Name: "WHO_AM_I", Description: "Device Identity (reads 0x68)", Access: "R", Default: "0x68"},
	}
}
