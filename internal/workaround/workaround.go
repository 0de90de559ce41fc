// Package workaround holds the opt-in behavioral patches compensating for
// empirically observed defects of the stage engine.
package workaround

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

var ErrUnknownWorkaround = errors.New("unknown workaround")

type Workaround int

const (
	// Microphone publishes silence unless echo cancellation is on.
	FixPublisherNoMicrophoneSound Workaround = iota
	// Video configuration only takes effect once publishing has started.
	FixPublisherVideoQuality
	// Remote audio is too quiet without play-and-record routing.
	FixViewerAudioLevel
)

func All() []Workaround {
	return []Workaround{
		FixPublisherNoMicrophoneSound,
		FixPublisherVideoQuality,
		FixViewerAudioLevel,
	}
}

func (w Workaround) Name() string {
	switch w {
	case FixPublisherNoMicrophoneSound:
		return "Publisher No Microphone Sound"
	case FixPublisherVideoQuality:
		return "Publisher Video Quality"
	case FixViewerAudioLevel:
		return "Viewer Audio Level"
	default:
		panic(protocol.Unhandled(w))
	}
}

// String is the configuration key of the workaround.
func (w Workaround) String() string {
	switch w {
	case FixPublisherNoMicrophoneSound:
		return "fixPublisherNoMicrophoneSound"
	case FixPublisherVideoQuality:
		return "fixPublisherVideoQuality"
	case FixViewerAudioLevel:
		return "fixViewerAudioLevel"
	default:
		panic(protocol.Unhandled(w))
	}
}

// Set is fixed when a session is created. The zero value is the empty set.
type Set struct {
	members map[Workaround]struct{}
}

func NewSet(workarounds ...Workaround) Set {
	members := make(map[Workaround]struct{}, len(workarounds))
	for _, w := range workarounds {
		members[w] = struct{}{}
	}
	return Set{members: members}
}

// AllSet selects every workaround, the default configuration.
func AllSet() Set {
	return NewSet(All()...)
}

// Parse builds a set from configuration keys, e.g. "fixViewerAudioLevel".
// Matching ignores case and surrounding spaces; empty entries are skipped.
func Parse(names []string) (Set, error) {
	var workarounds []Workaround
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		w, ok := lookup(name)
		if !ok {
			return Set{}, fmt.Errorf("%w: %q", ErrUnknownWorkaround, name)
		}
		workarounds = append(workarounds, w)
	}
	return NewSet(workarounds...), nil
}

func lookup(name string) (Workaround, bool) {
	for _, w := range All() {
		if strings.EqualFold(w.String(), name) {
			return w, true
		}
	}
	return 0, false
}

func (s Set) Contains(w Workaround) bool {
	_, ok := s.members[w]
	return ok
}

func (s Set) Len() int {
	return len(s.members)
}

// List returns the members in declaration order.
func (s Set) List() []Workaround {
	result := make([]Workaround, 0, len(s.members))
	for w := range s.members {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Strings returns the configuration keys of the members.
func (s Set) Strings() []string {
	list := s.List()
	result := make([]string, len(list))
	for i, w := range list {
		result[i] = w.String()
	}
	return result
}
