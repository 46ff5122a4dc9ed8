package catman

import "fmt"

// int16ScaleSteps is the divisor for reconstructing values stored as scaled
// 16-bit integers. The device quantizes over the signed positive range, so
// the divisor is 32767 rather than 65535.
const int16ScaleSteps = 32767

// ReadBody decodes the channel's sample block from the cursor's current
// position. The cursor must be positioned at the first body byte; after a
// successful read it rests at the start of the next channel record.
//
// Broken channels are skipped without touching the cursor: once header
// decoding failed there is no way to know where the body ends.
func (ch *Channel) ReadBody(c *Cursor) error {
	if ch.Broken {
		return nil
	}
	n := int(ch.Length)
	if n == 0 {
		ch.Data = []float64{}
		return nil
	}

	data := make([]float64, n)
	switch ch.Precision {
	case precisionDouble:
		for i := 0; i < n; i++ {
			v, err := c.ReadF64()
			if err != nil {
				return err
			}
			data[i] = v
		}
	case precisionFloat:
		for i := 0; i < n; i++ {
			v, err := c.ReadF32()
			if err != nil {
				return err
			}
			data[i] = float64(v)
		}
	case precisionInt16:
		// Two calibration doubles precede the quantized block; they bound
		// the stored range and are not part of the sample count.
		minValue, err := c.ReadF64()
		if err != nil {
			return err
		}
		maxValue, err := c.ReadF64()
		if err != nil {
			return err
		}
		sf := (maxValue - minValue) / int16ScaleSteps
		for i := 0; i < n; i++ {
			v, err := c.ReadU16()
			if err != nil {
				return err
			}
			data[i] = float64(v)*sf + minValue
		}
	default:
		// resolvePrecision normalizes every header to 8/4/2 before the body
		// is reachable.
		return fmt.Errorf("channel %q: invalid precision %d", ch.Name, ch.Precision)
	}

	ch.Data = data
	return nil
}
