package protocol

// ConnectionState is owned by the stage coordinator and only ever changed by
// the engine lifecycle callback.
type ConnectionState int

const (
	ConnectionStateDisconnected ConnectionState = iota
	ConnectionStateConnecting
	ConnectionStateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionStateDisconnected:
		return "Disconnected"
	case ConnectionStateConnecting:
		return "Connecting"
	case ConnectionStateConnected:
		return "Connected"
	default:
		panic(Unhandled(s))
	}
}

type PublishState int

const (
	PublishStateNotPublished PublishState = iota
	PublishStateAttemptingPublish
	PublishStatePublished
)

func (s PublishState) String() string {
	switch s {
	case PublishStateNotPublished:
		return "NotPublished"
	case PublishStateAttemptingPublish:
		return "AttemptingPublish"
	case PublishStatePublished:
		return "Published"
	default:
		panic(Unhandled(s))
	}
}

type SubscribeType int

const (
	SubscribeTypeNone SubscribeType = iota
	SubscribeTypeAudioOnly
	SubscribeTypeAudioVideo
)

func (s SubscribeType) String() string {
	switch s {
	case SubscribeTypeNone:
		return "None"
	case SubscribeTypeAudioOnly:
		return "AudioOnly"
	case SubscribeTypeAudioVideo:
		return "AudioVideo"
	default:
		panic(Unhandled(s))
	}
}

type SubscribeState int

const (
	SubscribeStateNotSubscribed SubscribeState = iota
	SubscribeStateAttemptingSubscribe
	SubscribeStateSubscribed
)

func (s SubscribeState) String() string {
	switch s {
	case SubscribeStateNotSubscribed:
		return "NotSubscribed"
	case SubscribeStateAttemptingSubscribe:
		return "AttemptingSubscribe"
	case SubscribeStateSubscribed:
		return "Subscribed"
	default:
		panic(Unhandled(s))
	}
}

type ParticipantInfo struct {
	ID         string
	UserID     string
	IsLocal    bool
	Attributes map[string]string
}

// Stream is a media stream announced by the engine for some participant.
// ID is the identity of the device behind the stream and is unique within a stage.
type Stream struct {
	ID            string
	ParticipantID string
	Type          DeviceType
	Muted         bool
}

// Strategy is consulted by the engine to decide what the local participant
// publishes and what it subscribes to.
type Strategy interface {
	ShouldPublishParticipant(participant ParticipantInfo) bool
	StreamsToPublishForParticipant(participant ParticipantInfo) []LocalStream
	ShouldSubscribeToParticipant(participant ParticipantInfo) SubscribeType
}

// Renderer receives the engine lifecycle and participant events.
type Renderer interface {
	ConnectionStateChanged(state ConnectionState, err error)
	PublishStateChanged(participant ParticipantInfo, state PublishState)
	StreamsAdded(participant ParticipantInfo, streams []Stream)
	StreamsRemoved(participant ParticipantInfo, streams []Stream)
	ParticipantJoined(participant ParticipantInfo)
	ParticipantLeft(participant ParticipantInfo)
	StreamsMutedChanged(participant ParticipantInfo, streams []Stream)
	SubscribeStateChanged(participant ParticipantInfo, state SubscribeState)
}

// Session is a joined-or-joinable stage. Join and Leave return immediately;
// the outcome is reported later through Renderer.ConnectionStateChanged.
type Session interface {
	Join() error
	Leave() error
	AddRenderer(Renderer)
	RefreshStrategy()
}

type Engine interface {
	CreateSession(token string, strategy Strategy) (Session, error)
}
