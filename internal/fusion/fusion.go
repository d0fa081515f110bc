package fusion

// Filter consumes gyro and accelerometer samples at a fixed rate and
// maintains an attitude estimate. Update takes degrees/second then g, in
// exactly that argument order. The readouts are plain accessors: they never
// block and keep returning the last computed attitude between updates.
type Filter interface {
	Update(gx, gy, gz, ax, ay, az float32)
	Roll() float64
	Pitch() float64
	Heading() float64
}
