package capture

import (
	"context"
	"testing"
	"time"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/driver"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/audiosession"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

func TestDescribeDefaults(t *testing.T) {
	listed := describe([]driverEntry{
		{id: "cam-low", kind: protocol.DeviceTypeCamera, priority: driver.PriorityLow},
		{id: "mic-1", label: "Built-in", kind: protocol.DeviceTypeMicrophone, priority: driver.PriorityNormal},
		{id: "cam-high", kind: protocol.DeviceTypeCamera, priority: driver.PriorityHigh},
		{id: "mic-2", kind: protocol.DeviceTypeMicrophone, priority: driver.PriorityNormal},
	})

	expected := map[string]bool{"cam-low": false, "mic-1": true, "cam-high": true, "mic-2": false}
	for _, d := range listed {
		descriptor := d.Descriptor()
		if descriptor.IsDefault != expected[descriptor.URN] {
			t.Fatalf("unexpected default flag for %s", descriptor.URN)
		}
		_, hasEcho := d.EchoCancellation()
		if hasEcho != (descriptor.Type == protocol.DeviceTypeMicrophone) {
			t.Fatalf("unexpected echo capability for %s", descriptor.URN)
		}
		if _, ok := d.InputSources(); ok {
			t.Fatalf("unexpected input sources for %s", descriptor.URN)
		}
	}

	if name := listed[0].Descriptor().FriendlyName; name != "cam-low" {
		t.Fatalf("expected id as friendly name, got %s", name)
	}
	if name := listed[1].Descriptor().FriendlyName; name != "Built-in" {
		t.Fatalf("expected label as friendly name, got %s", name)
	}
}

func TestDiscoveryKeepsDeviceState(t *testing.T) {
	d := NewDiscovery(nil)
	d.query = func() []driverEntry {
		return []driverEntry{{id: "mic-1", kind: protocol.DeviceTypeMicrophone}}
	}

	first, err := d.ListLocalDevices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	canceller, _ := first[0].EchoCancellation()
	if err := canceller.SetEchoCancellationEnabled(true); err != nil {
		t.Fatal(err)
	}

	second, err := d.ListLocalDevices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	canceller, _ = second[0].EchoCancellation()
	if !canceller.EchoCancellationEnabled() {
		t.Fatal("echo cancellation must survive enumeration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.ListLocalDevices(ctx); err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestVideoConstraints(t *testing.T) {
	var c mediadevices.MediaTrackConstraints
	videoConstraints("cam-1", binding.DefaultVideoConfiguration())(&c)

	if c.DeviceID != prop.String("cam-1") {
		t.Fatalf("unexpected device id %v", c.DeviceID)
	}
	if c.Width != prop.Int(720) || c.Height != prop.Int(1280) || c.FrameRate != prop.Float(30) {
		t.Fatalf("unexpected video constraints %+v", c)
	}
}

func TestAudioConstraints(t *testing.T) {
	for name, testCase := range map[string]struct {
		strategy audiosession.Strategy
		echo     bool
		latency  time.Duration
	}{
		"Default":       {strategy: audiosession.StrategyDefault, latency: defaultLatency},
		"PlayAndRecord": {strategy: audiosession.StrategyPlayAndRecord, echo: true, latency: playAndRecordLatency},
	} {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			var c mediadevices.MediaTrackConstraints
			audioConstraints("mic-1", testCase.strategy, testCase.echo)(&c)

			if c.Latency != prop.Duration(testCase.latency) {
				t.Fatalf("unexpected latency %v", c.Latency)
			}
			if c.SampleRate != prop.Int(audioSampleRate) {
				t.Fatalf("unexpected sample rate %v", c.SampleRate)
			}
			if testCase.echo && c.ChannelCount != prop.IntExact(1) {
				t.Fatalf("expected mono capture, got %v", c.ChannelCount)
			}
			if !testCase.echo && c.ChannelCount != nil {
				t.Fatalf("unexpected channel constraint %v", c.ChannelCount)
			}
		})
	}
}

func TestCodecName(t *testing.T) {
	for capability, expected := range map[string]string{
		VP8Capability.MimeType:  "VP8",
		OpusCapability.MimeType: "opus",
	} {
		name, err := codecName(protocol.CodecCapability{MimeType: capability})
		if err != nil || name != expected {
			t.Fatalf("expected %s, got %s (%v)", expected, name, err)
		}
	}
	if _, err := codecName(protocol.CodecCapability{MimeType: "video/H265"}); err == nil {
		t.Fatal("expected unsupported codec")
	}
}
