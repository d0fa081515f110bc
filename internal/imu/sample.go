package imu

// RawSample represents one accelerometer+gyro sample in sensor counts,
// two's complement as read from the output registers.
type RawSample struct {
	Source string `json:"source"` // "mpu6050", "sim", ...

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// Sample is a RawSample scaled to physical units: g for the
// accelerometer axes, degrees/second for the gyro axes.
type Sample struct {
	Source string `json:"source"`

	Ax float32 `json:"ax_g"`
	Ay float32 `json:"ay_g"`
	Az float32 `json:"az_g"`

	Gx float32 `json:"gx_dps"`
	Gy float32 `json:"gy_dps"`
	Gz float32 `json:"gz_dps"`
}

type RawSource interface {
	NextRaw() (RawSample, error)
}
