// Package audiosession holds the audio routing mode of the whole process.
//
// The mode is global: changing it affects every session living in the process,
// not only the one being created. Set it once at startup.
package audiosession

import (
	"sync"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

type Strategy int

const (
	StrategyDefault Strategy = iota
	// Playback and capture run simultaneously.
	StrategyPlayAndRecord
)

func (s Strategy) String() string {
	switch s {
	case StrategyDefault:
		return "default"
	case StrategyPlayAndRecord:
		return "playAndRecord"
	default:
		panic(protocol.Unhandled(s))
	}
}

var (
	strategyMu sync.RWMutex
	strategy   = StrategyDefault
)

func SetApplicationStrategy(s Strategy) {
	strategyMu.Lock()
	defer strategyMu.Unlock()
	strategy = s
}

func ApplicationStrategy() Strategy {
	strategyMu.RLock()
	defer strategyMu.RUnlock()
	return strategy
}
