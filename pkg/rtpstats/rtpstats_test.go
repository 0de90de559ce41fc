package rtpstats

import (
	"testing"

	"github.com/pion/interceptor/pkg/stats"
)

type fakeGetter map[uint32]*stats.Stats

func (g fakeGetter) Get(ssrc uint32) *stats.Stats {
	return g[ssrc]
}

func TestInbound(t *testing.T) {
	known := &stats.Stats{}
	known.InboundRTPStreamStats.PacketsReceived = 42
	known.InboundRTPStreamStats.PacketsLost = 2
	known.InboundRTPStreamStats.PLICount = 1

	rStat := NewRtpStats(fakeGetter{1234: known})

	inbound, ok := rStat.Inbound(1234)
	if !ok {
		t.Fatal("expected stats for known ssrc")
	}
	if inbound.SSRC != 1234 || inbound.PacketsReceived != 42 || inbound.PacketsLost != 2 || inbound.PLICount != 1 {
		t.Fatalf("unexpected stats %+v", inbound)
	}

	if _, ok := rStat.Inbound(1); ok {
		t.Fatal("unexpected stats for unknown ssrc")
	}

	var empty *RtpStats
	if _, ok := empty.Inbound(1234); ok {
		t.Fatal("nil stats must report nothing")
	}
}
