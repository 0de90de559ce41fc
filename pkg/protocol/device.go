package protocol

import "github.com/pion/rtp"

type DeviceType int

const (
	DeviceTypeCamera DeviceType = iota
	DeviceTypeMicrophone
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeCamera:
		return "camera"
	case DeviceTypeMicrophone:
		return "microphone"
	default:
		panic(Unhandled(t))
	}
}

type DeviceDescriptor struct {
	Type         DeviceType
	IsDefault    bool
	URN          string
	FriendlyName string
}

// DeviceVariant tags which capabilities a device exposes. Capability
// accessors on Device are only meaningful for the matching variant.
type DeviceVariant int

const (
	DeviceVariantCamera DeviceVariant = iota
	DeviceVariantMicrophone
	DeviceVariantMultiSource
)

func (v DeviceVariant) String() string {
	switch v {
	case DeviceVariantCamera:
		return "camera"
	case DeviceVariantMicrophone:
		return "microphone"
	case DeviceVariantMultiSource:
		return "multi-source"
	default:
		panic(Unhandled(v))
	}
}

type Device interface {
	Descriptor() DeviceDescriptor
	Variant() DeviceVariant
	// EchoCancellation is available on microphones.
	EchoCancellation() (EchoCanceller, bool)
	// InputSources is available on multi-source devices.
	InputSources() (InputSourceSelector, bool)
}

type EchoCanceller interface {
	EchoCancellationEnabled() bool
	SetEchoCancellationEnabled(enabled bool) error
}

type InputSource struct {
	URN       string
	Label     string
	IsDefault bool
}

type InputSourceSelector interface {
	ListAvailableInputSources() []InputSource
	SetPreferredInputSource(source InputSource) error
}

type CodecCapability struct {
	MimeType    string
	ClockRate   uint32
	Channels    uint16
	SDPFmtpLine string
}

type RTPReader interface {
	Read() (pkts []*rtp.Packet, release func(), err error)
	// ForceKeyFrame asks the encoder behind the reader for a key frame.
	// Audio readers return nil.
	ForceKeyFrame() error
	Close() error
}

// LocalStream is a captured device stream offered to the engine for publish.
type LocalStream interface {
	ID() string
	Type() DeviceType
	Codec() CodecCapability
	NewRTPReader(ssrc uint32, mtu int) (RTPReader, error)
	Close() error
}
