package service

import (
	"log/slog"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/intervalpli"
	"github.com/pion/interceptor/pkg/stats"
	webrtc "github.com/pion/webrtc/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/rtpstats"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/variables"
	"go.uber.org/fx"
)

var WEBRTC_PLI_INTERVAL = variables.Env(
	variables.WEBRTC_PLI_INTERVAL_MS,
	variables.WEBRTC_PLI_INTERVAL_MS_DEFAULT,
)

const statsBufferSize = 8

type webrtcAPI_Params struct {
	fx.In

	Logger *slog.Logger
}

type webrtcAPI_Result struct {
	fx.Out

	API   *webrtc.API
	Stats chan *rtpstats.RtpStats
}

// Every peer connection created by the API pushes its stats getter into
// Stats. Peer connections must be created one at a time for the getter to be
// matched with its connection.
func webrtcAPI(params webrtcAPI_Params) (webrtcAPI_Result, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return webrtcAPI_Result{}, err
	}

	mediaSettings := webrtc.SettingEngine{}
	mediaSettings.SetNetworkTypes([]webrtc.NetworkType{
		webrtc.NetworkTypeUDP4,
		webrtc.NetworkTypeUDP6,
	})

	pliInterval, err := variables.ParseInt(WEBRTC_PLI_INTERVAL)
	if err != nil {
		return webrtcAPI_Result{}, err
	}

	interceptorRegistry := &interceptor.Registry{}
	pli, err := intervalpli.NewReceiverInterceptor(
		intervalpli.GeneratorInterval(time.Duration(pliInterval) * time.Millisecond),
	)
	if err != nil {
		return webrtcAPI_Result{}, err
	}
	interceptorRegistry.Add(pli)

	statsCh := make(chan *rtpstats.RtpStats, statsBufferSize)
	statsInterceptor, err := stats.NewInterceptor()
	if err != nil {
		return webrtcAPI_Result{}, err
	}
	statsInterceptor.OnNewPeerConnection(func(id string, getter stats.Getter) {
		select {
		case statsCh <- rtpstats.NewRtpStats(getter):
		default:
			params.Logger.Warn("rtp stats are not consumed", slog.String("peer", id))
		}
	})
	interceptorRegistry.Add(statsInterceptor)

	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, interceptorRegistry); err != nil {
		return webrtcAPI_Result{}, err
	}

	return webrtcAPI_Result{
		API: webrtc.NewAPI(
			webrtc.WithMediaEngine(mediaEngine),
			webrtc.WithSettingEngine(mediaSettings),
			webrtc.WithInterceptorRegistry(interceptorRegistry),
		),
		Stats: statsCh,
	}, nil
}

var WebrtcModule = fx.Module("webrtc", fx.Provide(
	webrtcAPI,
))
