package engine

import (
	"encoding/json"
	"sync"

	webrtc "github.com/pion/webrtc/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/wsutils"
)

const (
	eventOffer            = "offer"
	eventAnswer           = "answer"
	eventCandidate        = "candidate"
	eventSubscribe        = "subscribe"
	eventCommitOfferState = "commit-offer-state"
	eventFilters          = "filters"
	eventError            = "error"
)

// offerMessage is the server offer with the state hash it expects back once
// the answer is applied.
type offerMessage struct {
	webrtc.SessionDescription

	HashState string `json:"hash_state"`
}

type commitOfferStateMessage struct {
	StateHash string `json:"state_hash"`
}

type subscribeMessage struct {
	RestartICE bool `json:"restartICE"`
}

type WebsocketWriter interface {
	WriteEvent(event string, data any) error
	ReadMessage() (*wsutils.Message, error)
	Close() error
}

// Signal speaks the media server signaling on the answering side.
// Candidates received before the remote description are held back.
type Signal struct {
	conn WebsocketWriter
	pc   *webrtc.PeerConnection

	pendingMu  sync.Mutex
	pending    []webrtc.ICECandidateInit
	remoteDesc bool
}

func (s *Signal) OnCandidate(data []byte) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(data, &candidate); err != nil {
		return err
	}

	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if !s.remoteDesc {
		s.pending = append(s.pending, candidate)
		return nil
	}
	return s.pc.AddICECandidate(candidate)
}

// OnOffer applies the offer, lets prepare change the local tracks and sends
// the answer back.
func (s *Signal) OnOffer(data []byte, prepare func() error) error {
	var offer offerMessage
	if err := json.Unmarshal(data, &offer); err != nil {
		return err
	}

	if err := s.pc.SetRemoteDescription(offer.SessionDescription); err != nil {
		return err
	}
	if err := s.flushCandidates(); err != nil {
		return err
	}

	if err := prepare(); err != nil {
		return err
	}

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return err
	}
	if err = s.pc.SetLocalDescription(answer); err != nil {
		return err
	}

	if err = s.conn.WriteEvent(eventAnswer, answer); err != nil {
		return err
	}

	if offer.HashState == "" {
		return nil
	}
	return s.conn.WriteEvent(eventCommitOfferState, &commitOfferStateMessage{StateHash: offer.HashState})
}

func (s *Signal) flushCandidates() error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	s.remoteDesc = true
	pending := s.pending
	s.pending = nil

	for _, candidate := range pending {
		if err := s.pc.AddICECandidate(candidate); err != nil {
			return err
		}
	}
	return nil
}

func (s *Signal) WriteCandidate(candidate webrtc.ICECandidateInit) error {
	return s.conn.WriteEvent(eventCandidate, candidate)
}

// RequestOffer asks the server to renegotiate, e.g. after the published
// tracks changed.
func (s *Signal) RequestOffer() error {
	return s.conn.WriteEvent(eventSubscribe, &subscribeMessage{})
}

func newSignal(conn WebsocketWriter, pc *webrtc.PeerConnection) *Signal {
	return &Signal{
		conn: conn,
		pc:   pc,
	}
}
