package rtpstats

import (
	"log/slog"

	"github.com/pion/interceptor/pkg/stats"
)

type RtpStats struct {
	getter stats.Getter
}

func (rStat *RtpStats) GetGetter() stats.Getter {
	return rStat.getter
}

// Inbound is the receive side summary of one remote stream.
type Inbound struct {
	SSRC            uint32
	PacketsReceived uint64
	PacketsLost     int64
	Jitter          float64
	BytesReceived   uint64
	NACKCount       uint32
	PLICount        uint32
}

func (i Inbound) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("ssrc", i.SSRC),
		slog.Uint64("packets_received", i.PacketsReceived),
		slog.Int64("packets_lost", i.PacketsLost),
		slog.Float64("jitter", i.Jitter),
		slog.Uint64("bytes_received", i.BytesReceived),
		slog.Any("nack", i.NACKCount),
		slog.Any("pli", i.PLICount),
	)
}

// Inbound reports false until the interceptor has seen the stream.
func (rStat *RtpStats) Inbound(ssrc uint32) (Inbound, bool) {
	if rStat == nil || rStat.getter == nil {
		return Inbound{}, false
	}

	s := rStat.getter.Get(ssrc)
	if s == nil {
		return Inbound{}, false
	}

	return Inbound{
		SSRC:            ssrc,
		PacketsReceived: s.InboundRTPStreamStats.PacketsReceived,
		PacketsLost:     s.InboundRTPStreamStats.PacketsLost,
		Jitter:          s.InboundRTPStreamStats.Jitter,
		BytesReceived:   s.InboundRTPStreamStats.BytesReceived,
		NACKCount:       s.InboundRTPStreamStats.NACKCount,
		PLICount:        s.InboundRTPStreamStats.PLICount,
	}, true
}

func NewRtpStats(getter stats.Getter) *RtpStats {
	return &RtpStats{getter}
}
