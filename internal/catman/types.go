package catman

// Channel format codes as stored in the channel header.
const (
	FormatNumeric = 0
	FormatString  = 1
	FormatBinary  = 2
)

// ExtendedHeader is the fixed-shape calibration/device block that follows a
// channel's basic header. Only ExportFormat (precision) and Dt (sample
// interval) drive decoding; everything else is preserved for inspection.
type ExtendedHeader struct {
	T0             float64
	Dt             float64
	SensorType     int16
	SupplyVoltage  int16
	FiltChar       int16
	FiltFreq       int16
	TareVal        float32
	ZeroVal        float32
	MeasRange      float32
	InChar         [4]float32
	SerNo          string
	PhysUnit       string
	NativeUnit     string
	Slot           int16
	SubSlot        int16
	AmpType        int16
	APType         int16
	KFactor        float32
	BFactor        float32
	MeasSig        int16
	AmpInput       int16
	HPFilt         int16
	OLImportInfo   uint8
	ScaleType      uint8
	SoftwareTare   float32
	WriteProtected bool
	NominalRange   float32
	CLCFactor      float32
	ExportFormat   uint8
}

// Channel is one decoded stream of the file: identity, calibration context
// and, once ReadBody has run, the sample data.
type Channel struct {
	Index    int16
	Length   int32
	Name     string
	FileName string
	FullName string
	Unit     string
	Comment  string

	Format int16
	DW     int16
	Time   float64

	HdrBytes  int32
	Ext       ExtendedHeader
	Precision int // bytes per stored sample: 8, 4 or 2

	LMode      int8
	Scale      int8
	Formula    string
	SensorInfo string

	// IsTime is set by a TimePredicate before grouping; the wire format has
	// no explicit marker for the time axis.
	IsTime  bool
	TimeRef *Channel

	Broken bool
	Data   []float64
}

// Group binds the channels of one length partition to their time axis.
// ChannelX is nil when no member was marked as time; such a group cannot be
// aligned and RateValid is false.
type Group struct {
	Name     string
	FileName string
	FullName string

	Channels  []*Channel
	ChannelX  *Channel
	ChannelsY []*Channel

	Interval    float64
	IntervalStr string
	Frequency   float64
	RateValid   bool
}

// File is the result of decoding one buffer.
type File struct {
	Name     string
	Channels []*Channel
	Groups   []*Group
	Warnings []Warning
}

// WarningKind labels a recoverable decode diagnostic.
type WarningKind string

const (
	WarnHeaderLengthMismatch    WarningKind = "header_length_mismatch"
	WarnUnsupportedExportFormat WarningKind = "unsupported_export_format"
	WarnNoTimeChannel           WarningKind = "no_time_channel"
	WarnDegenerateTimeChannel   WarningKind = "degenerate_time_channel"
)

// Warning records a condition the decoder recovered from. Warnings never
// interrupt a file-level decode; only buffer bounds violations do.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Channel string      `json:"channel,omitempty"`
	Group   string      `json:"group,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	subject := w.Channel
	if subject == "" {
		subject = w.Group
	}
	if subject == "" {
		return string(w.Kind) + ": " + w.Message
	}
	return string(w.Kind) + " (" + subject + "): " + w.Message
}
