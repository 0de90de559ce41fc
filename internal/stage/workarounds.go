package stage

import (
	"github.com/romashorodok/conferencing-platform/stage-client/internal/audiosession"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
)

// ApplyProcessWorkarounds applies the workarounds that change process-wide
// state. It affects every session of the process and must run once, before
// the first coordinator is created. It reports whether anything changed.
func ApplyProcessWorkarounds(set workaround.Set) bool {
	if !set.Contains(workaround.FixViewerAudioLevel) {
		return false
	}
	audiosession.SetApplicationStrategy(audiosession.StrategyPlayAndRecord)
	return true
}
