package catman

import "strings"

// DecodeChannel reads one channel record starting at the cursor's current
// position: the basic header, the extended header and the trailing
// calibration fields. It does not read the sample body; callers decide when
// (or whether) to call ReadBody, since the body of every channel must be
// consumed before the next record starts.
//
// fileName is the stem of the originating file and is only used to build the
// channel's fully qualified name.
func DecodeChannel(c *Cursor, fileName string) (*Channel, []Warning, error) {
	ch := &Channel{FileName: fileName}
	var warns []Warning

	var err error
	if ch.Index, err = c.ReadI16(); err != nil {
		return broken(ch), warns, err
	}
	if ch.Length, err = c.ReadI32(); err != nil {
		return broken(ch), warns, err
	}
	if ch.Name, err = c.ReadShortString(); err != nil {
		return broken(ch), warns, err
	}
	ch.FullName = fileName + "." + strings.ReplaceAll(ch.Name, " ", "_")

	if ch.Unit, err = c.ReadShortString(); err != nil {
		return broken(ch), warns, err
	}
	if ch.Comment, err = c.ReadShortString(); err != nil {
		return broken(ch), warns, err
	}
	if ch.Format, err = c.ReadI16(); err != nil {
		return broken(ch), warns, err
	}
	if ch.DW, err = c.ReadI16(); err != nil {
		return broken(ch), warns, err
	}
	if ch.Time, err = c.ReadF64(); err != nil {
		return broken(ch), warns, err
	}
	if ch.HdrBytes, err = c.ReadI32(); err != nil {
		return broken(ch), warns, err
	}

	ext, extWarns, err := decodeExtendedHeader(c, ch.Name, ch.HdrBytes)
	warns = append(warns, extWarns...)
	if err != nil {
		return broken(ch), warns, err
	}
	ch.Ext = ext

	precision, precWarns := resolvePrecision(ext, ch.Name)
	warns = append(warns, precWarns...)
	ch.Precision = precision

	if ch.LMode, err = c.ReadI8(); err != nil {
		return broken(ch), warns, err
	}
	if ch.Scale, err = c.ReadI8(); err != nil {
		return broken(ch), warns, err
	}

	// npoi unknown calibration points follow; nothing downstream uses them.
	npoi, err := c.ReadU8()
	if err != nil {
		return broken(ch), warns, err
	}
	for i := 0; i < int(npoi); i++ {
		if _, err := c.ReadF64(); err != nil {
			return broken(ch), warns, err
		}
	}

	// Thermo type, also discarded.
	if _, err := c.ReadI16(); err != nil {
		return broken(ch), warns, err
	}

	if ch.Formula, err = c.ReadShortString(); err != nil {
		return broken(ch), warns, err
	}
	if ch.SensorInfo, err = c.ReadLongString(); err != nil {
		return broken(ch), warns, err
	}

	return ch, warns, nil
}

func broken(ch *Channel) *Channel {
	ch.Broken = true
	return ch
}
