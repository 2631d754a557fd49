//go:build !linux

package monotonic

const nativeSource = "unavailable"

func readNative() (float64, bool) { return 0, false }
