package stage

import "github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"

// RemoteStreamSet keeps the remote streams in the order the engine announced
// them. Stream IDs are unique within a stage so Add does not deduplicate.
type RemoteStreamSet struct {
	streams []protocol.Stream
}

func (s *RemoteStreamSet) Add(streams ...protocol.Stream) {
	s.streams = append(s.streams, streams...)
}

// Remove drops every entry whose ID matches one of streams and reports how
// many entries were removed.
func (s *RemoteStreamSet) Remove(streams ...protocol.Stream) int {
	if len(streams) == 0 || len(s.streams) == 0 {
		return 0
	}

	removed := make(map[string]struct{}, len(streams))
	for _, stream := range streams {
		removed[stream.ID] = struct{}{}
	}

	kept := s.streams[:0]
	for _, stream := range s.streams {
		if _, exist := removed[stream.ID]; exist {
			continue
		}
		kept = append(kept, stream)
	}

	count := len(s.streams) - len(kept)
	clear(s.streams[len(kept):])
	s.streams = kept
	return count
}

func (s *RemoteStreamSet) Len() int {
	return len(s.streams)
}

// List returns a copy safe to hand outside of the owning loop.
func (s *RemoteStreamSet) List() []protocol.Stream {
	result := make([]protocol.Stream, len(s.streams))
	copy(result, s.streams)
	return result
}
