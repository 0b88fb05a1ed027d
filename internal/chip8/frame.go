package chip8

// Frame is a copy of the display buffer, one byte per pixel with the values
// 0 or 1, stored row-major.
type Frame [ScreenSize]byte

// Pixel returns whether the pixel at the given screen coordinate is set.
func (f *Frame) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	return f[y*ScreenWidth+x] == 1
}
