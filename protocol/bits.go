package protocol

import "golang.org/x/exp/constraints"

// field extracts a width-bit field starting at pos.
func field[T constraints.Unsigned](v T, pos, width uint) T {
	return (v >> pos) & (T(1)<<width - 1)
}

// putField returns v with the width-bit field at pos replaced by x.
func putField[T constraints.Unsigned](v T, pos, width uint, x T) T {
	mask := (T(1)<<width - 1) << pos
	return v&^mask | (x<<pos)&mask
}

// bytesFor rounds a bit count up to whole bytes.
func bytesFor[T constraints.Unsigned](bits T) T {
	return (bits + 7) / 8
}
