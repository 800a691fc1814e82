// Package audio holds the encoding description shared by capture and
// playback backends and the transports that consume their streams.
package audio

const DefaultSampleRate = 16000

// GetDefaultEncodingInfo returns the encoding used when a device does not
// report its own: 16kHz mono linear16.
func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: EncodingLinear16}
}

// EncodingInfo describes a raw audio stream: sample rate plus sample format.
type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// SilenceValue is the byte that represents silence in the stream's format,
// usable for padding or keepalive frames.
func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

type encodingFormat string

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)

func (e encodingFormat) Name() string {
	return string(e)
}

// ByteSize is the width of one sample in bytes, or -1 for unknown formats.
func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}
