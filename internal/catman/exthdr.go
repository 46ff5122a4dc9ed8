package catman

import "fmt"

// Storage precisions in bytes per sample, keyed by ExportFormat.
const (
	precisionDouble = 8
	precisionFloat  = 4
	precisionInt16  = 2
)

// decodeExtendedHeader reads the fixed-order extended header for the named
// channel. The field values are stored with natural alignment relative to
// the start of the block, which forces a 3-byte pad after WriteProtected
// (the next field, NominalRange, is a float) and a 7-byte reserve at the
// end.
//
// The number of bytes consumed is cross-checked against the declared header
// size. A mismatch means the hardcoded layout no longer matches the firmware
// that wrote the file; the decoder then keeps whatever it read, forces
// double precision and reseeks to the declared end so the following channel
// fields stay in sync. That fallback is deliberate format tolerance and is
// surfaced as a warning, never an error.
func decodeExtendedHeader(c *Cursor, name string, nHdrBytes int32) (ExtendedHeader, []Warning, error) {
	var h ExtendedHeader
	start := c.Tell()

	read := func(dst any) error {
		var err error
		switch p := dst.(type) {
		case *float64:
			*p, err = c.ReadF64()
		case *float32:
			*p, err = c.ReadF32()
		case *int16:
			*p, err = c.ReadI16()
		case *uint8:
			*p, err = c.ReadU8()
		default:
			panic("unhandled extended header field type")
		}
		return err
	}

	fields := []any{
		&h.T0, &h.Dt,
		&h.SensorType, &h.SupplyVoltage,
		&h.FiltChar, &h.FiltFreq,
		&h.TareVal, &h.ZeroVal, &h.MeasRange,
		&h.InChar[0], &h.InChar[1], &h.InChar[2], &h.InChar[3],
	}
	for _, f := range fields {
		if err := read(f); err != nil {
			return h, nil, err
		}
	}

	var err error
	if h.SerNo, err = c.ReadString(32); err != nil {
		return h, nil, err
	}
	if h.PhysUnit, err = c.ReadString(8); err != nil {
		return h, nil, err
	}
	if h.NativeUnit, err = c.ReadString(8); err != nil {
		return h, nil, err
	}

	fields = []any{
		&h.Slot, &h.SubSlot, &h.AmpType, &h.APType,
		&h.KFactor, &h.BFactor,
		&h.MeasSig, &h.AmpInput, &h.HPFilt,
		&h.OLImportInfo, &h.ScaleType,
		&h.SoftwareTare,
	}
	for _, f := range fields {
		if err := read(f); err != nil {
			return h, nil, err
		}
	}

	wp, err := c.ReadU8()
	if err != nil {
		return h, nil, err
	}
	h.WriteProtected = wp != 0

	// Alignment pad: NominalRange is a float and must land on a 4-byte
	// boundary relative to the block start.
	if err := c.Skip(3); err != nil {
		return h, nil, err
	}

	if err := read(&h.NominalRange); err != nil {
		return h, nil, err
	}
	if err := read(&h.CLCFactor); err != nil {
		return h, nil, err
	}
	if err := read(&h.ExportFormat); err != nil {
		return h, nil, err
	}
	if err := c.Skip(7); err != nil {
		return h, nil, err
	}

	consumed := c.Tell() - start
	if consumed != int(nHdrBytes) {
		warn := Warning{
			Kind:    WarnHeaderLengthMismatch,
			Channel: name,
			Message: fmt.Sprintf("extended header consumed %d bytes, declared %d; assuming double precision and resyncing", consumed, nHdrBytes),
		}
		if err := c.Seek(start + int(nHdrBytes)); err != nil {
			return h, []Warning{warn}, err
		}
		h.ExportFormat = 0
		return h, []Warning{warn}, nil
	}
	return h, nil, nil
}

// resolvePrecision maps ExportFormat to a byte width. Unexpected codes fall
// back to double precision with a warning.
func resolvePrecision(h ExtendedHeader, name string) (int, []Warning) {
	switch h.ExportFormat {
	case 0:
		return precisionDouble, nil
	case 1:
		return precisionFloat, nil
	case 2:
		return precisionInt16, nil
	}
	return precisionDouble, []Warning{{
		Kind:    WarnUnsupportedExportFormat,
		Channel: name,
		Message: fmt.Sprintf("unexpected ExportFormat %d; assuming double precision", h.ExportFormat),
	}}
}
