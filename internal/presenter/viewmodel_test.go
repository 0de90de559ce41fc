package presenter

import (
	"reflect"
	"testing"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/stage"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

func TestNewViewModel(t *testing.T) {
	for name, testCase := range map[string]struct {
		snapshot stage.Snapshot
		expected ViewModel
	}{
		"Idle": {
			snapshot: stage.Snapshot{},
			expected: ViewModel{
				Connection:      StateView{Title: "Disconnected", Color: ColorRed},
				Publish:         StateView{Title: "NotPublished", Color: ColorRed},
				ConnectTitle:    "Connect",
				CameraTitle:     "Connect camera",
				MicrophoneTitle: "Connect microphone",
				BroadcastTitle:  "Start broadcasting",
				RemoteVideos:    []string{},
			},
		},
		"Connecting": {
			snapshot: stage.Snapshot{
				ConnectionState: protocol.ConnectionStateConnecting,
				PublishState:    protocol.PublishStateAttemptingPublish,
				Intents:         stage.Intents{Broadcast: true},
			},
			expected: ViewModel{
				Connection:       StateView{Title: "Connecting", Color: ColorOrange},
				Publish:          StateView{Title: "AttemptingPublish", Color: ColorOrange},
				ConnectTitle:     "Disconnect",
				CameraTitle:      "Connect camera",
				MicrophoneTitle:  "Connect microphone",
				BroadcastTitle:   "Stop broadcasting",
				RemoteVideos:     []string{},
				BroadcastEnabled: true,
			},
		},
		"Broadcasting": {
			snapshot: stage.Snapshot{
				ConnectionState: protocol.ConnectionStateConnected,
				PublishState:    protocol.PublishStatePublished,
				Intents:         stage.Intents{Camera: true, Microphone: true, Broadcast: true},
				PreviewCamera:   "camera-1",
				Microphone:      "microphone-1",
				RemoteStreams: []protocol.Stream{
					{ID: "remote-video-2", ParticipantID: "b", Type: protocol.DeviceTypeCamera},
					{ID: "remote-audio-1", ParticipantID: "a", Type: protocol.DeviceTypeMicrophone},
					{ID: "remote-video-1", ParticipantID: "a", Type: protocol.DeviceTypeCamera},
				},
			},
			expected: ViewModel{
				Connection:        StateView{Title: "Connected", Color: ColorGreen},
				Publish:           StateView{Title: "Published", Color: ColorGreen},
				ConnectTitle:      "Disconnect",
				CameraTitle:       "Disconnect camera",
				MicrophoneTitle:   "Disconnect microphone",
				BroadcastTitle:    "Stop broadcasting",
				PreviewCamera:     "camera-1",
				Microphone:        "microphone-1",
				RemoteVideos:      []string{"remote-video-2", "remote-video-1"},
				CameraEnabled:     true,
				MicrophoneEnabled: true,
				BroadcastEnabled:  true,
			},
		},
	} {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			vm := NewViewModel(testCase.snapshot)
			if !reflect.DeepEqual(vm, testCase.expected) {
				t.Fatalf("expected %+v, got %+v", testCase.expected, vm)
			}
		})
	}
}

func TestNewViewModelUnknownState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unknown connection state")
		}
	}()
	NewViewModel(stage.Snapshot{ConnectionState: protocol.ConnectionState(42)})
}
