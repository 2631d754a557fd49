//go:build linux

package monotonic

import "golang.org/x/sys/unix"

const nativeSource = "clock_gettime(CLOCK_MONOTONIC)"

func readNative() (float64, bool) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, false
	}
	return float64(ts.Nano()) / 1e9, true
}
