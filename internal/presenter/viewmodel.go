// Package presenter turns coordinator snapshots into view models and exposes
// the stage intents over HTTP.
package presenter

import (
	"github.com/romashorodok/conferencing-platform/stage-client/internal/stage"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

type Color string

const (
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
)

type StateView struct {
	Title string `json:"title"`
	Color Color  `json:"color"`
}

type ViewModel struct {
	Connection        StateView `json:"connection"`
	Publish           StateView `json:"publish"`
	ConnectTitle      string    `json:"connectTitle"`
	CameraTitle       string    `json:"cameraTitle"`
	MicrophoneTitle   string    `json:"microphoneTitle"`
	BroadcastTitle    string    `json:"broadcastTitle"`
	PreviewCamera     string    `json:"previewCamera,omitempty"`
	Microphone        string    `json:"microphone,omitempty"`
	RemoteVideos      []string  `json:"remoteVideos"`
	CameraEnabled     bool      `json:"cameraEnabled"`
	MicrophoneEnabled bool      `json:"microphoneEnabled"`
	BroadcastEnabled  bool      `json:"broadcastEnabled"`
}

func connectionView(state protocol.ConnectionState) StateView {
	switch state {
	case protocol.ConnectionStateConnected:
		return StateView{Title: state.String(), Color: ColorGreen}
	case protocol.ConnectionStateConnecting:
		return StateView{Title: state.String(), Color: ColorOrange}
	case protocol.ConnectionStateDisconnected:
		return StateView{Title: state.String(), Color: ColorRed}
	default:
		panic(protocol.Unhandled(state))
	}
}

func publishView(state protocol.PublishState) StateView {
	switch state {
	case protocol.PublishStatePublished:
		return StateView{Title: state.String(), Color: ColorGreen}
	case protocol.PublishStateAttemptingPublish:
		return StateView{Title: state.String(), Color: ColorOrange}
	case protocol.PublishStateNotPublished:
		return StateView{Title: state.String(), Color: ColorRed}
	default:
		panic(protocol.Unhandled(state))
	}
}

func toggleTitle(on bool, enable, disable string) string {
	if on {
		return disable
	}
	return enable
}

func NewViewModel(snapshot stage.Snapshot) ViewModel {
	// Connecting is left with the same toggle as Connected.
	connected := snapshot.ConnectionState != protocol.ConnectionStateDisconnected

	vm := ViewModel{
		Connection:        connectionView(snapshot.ConnectionState),
		Publish:           publishView(snapshot.PublishState),
		ConnectTitle:      toggleTitle(connected, "Connect", "Disconnect"),
		CameraTitle:       toggleTitle(snapshot.Intents.Camera, "Connect camera", "Disconnect camera"),
		MicrophoneTitle:   toggleTitle(snapshot.Intents.Microphone, "Connect microphone", "Disconnect microphone"),
		BroadcastTitle:    toggleTitle(snapshot.Intents.Broadcast, "Start broadcasting", "Stop broadcasting"),
		PreviewCamera:     snapshot.PreviewCamera,
		Microphone:        snapshot.Microphone,
		RemoteVideos:      []string{},
		CameraEnabled:     snapshot.Intents.Camera,
		MicrophoneEnabled: snapshot.Intents.Microphone,
		BroadcastEnabled:  snapshot.Intents.Broadcast,
	}

	for _, stream := range snapshot.RemoteStreams {
		if stream.Type == protocol.DeviceTypeCamera {
			vm.RemoteVideos = append(vm.RemoteVideos, stream.ID)
		}
	}
	return vm
}
