package pricemath

import "fmt"

// AlignTick moves tick onto a multiple of spacing, rounding toward negative
// infinity or, when roundUp is set, toward positive infinity. The result must
// stay within the spacing-aligned [MinTick, MaxTick] bounds.
func AlignTick(tick, spacing int32, roundUp bool) (int32, error) {
	const op = "align tick"
	if spacing <= 0 {
		return 0, domainErr(op, fmt.Sprintf("spacing=%d", spacing), ErrInvalidTickSpacing)
	}
	if tick < MinTick || tick > MaxTick {
		return 0, domainErr(op, fmt.Sprintf("%d", tick), ErrTickOutOfRange)
	}

	aligned := (tick / spacing) * spacing
	if aligned != tick {
		if tick < 0 && !roundUp {
			aligned -= spacing
		} else if tick > 0 && roundUp {
			aligned += spacing
		}
	}

	minUsable, maxUsable := UsableTickBounds(spacing)
	if aligned < minUsable || aligned > maxUsable {
		return 0, domainErr(op, fmt.Sprintf("%d spacing=%d", tick, spacing), ErrTickOutOfRange)
	}
	return aligned, nil
}

// UsableTickBounds returns the lowest and highest ticks a pool with this spacing can initialize.
func UsableTickBounds(spacing int32) (int32, int32) {
	return (MinTick / spacing) * spacing, (MaxTick / spacing) * spacing
}

// UsableTickRange widens [lower, upper] outward onto the spacing grid. A single
// tick off the grid widens to one spacing; the range is empty only when the
// aligned bounds meet.
func UsableTickRange(lower, upper, spacing int32) (int32, int32, error) {
	const op = "usable tick range"
	if lower > upper {
		return 0, 0, domainErr(op, fmt.Sprintf("[%d, %d]", lower, upper), ErrEmptyTickRange)
	}
	alignedLower, err := AlignTick(lower, spacing, false)
	if err != nil {
		return 0, 0, err
	}
	alignedUpper, err := AlignTick(upper, spacing, true)
	if err != nil {
		return 0, 0, err
	}
	if alignedLower >= alignedUpper {
		return 0, 0, domainErr(op, fmt.Sprintf("[%d, %d]", alignedLower, alignedUpper), ErrEmptyTickRange)
	}
	return alignedLower, alignedUpper, nil
}
