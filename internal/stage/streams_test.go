package stage

import (
	"testing"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

func ids(streams []protocol.Stream) []string {
	result := make([]string, len(streams))
	for i, stream := range streams {
		result[i] = stream.ID
	}
	return result
}

func TestRemoteStreamSetRoundTrip(t *testing.T) {
	for name, testCase := range map[string]struct {
		prior []protocol.Stream
		added []protocol.Stream
	}{
		"Empty": {
			added: []protocol.Stream{{ID: "a"}, {ID: "b"}},
		},
		"KeepsOrder": {
			prior: []protocol.Stream{{ID: "x"}, {ID: "y"}, {ID: "z"}},
			added: []protocol.Stream{{ID: "a"}, {ID: "b"}},
		},
		"NothingAdded": {
			prior: []protocol.Stream{{ID: "x"}},
		},
	} {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			var set RemoteStreamSet
			set.Add(testCase.prior...)
			before := ids(set.List())

			set.Add(testCase.added...)
			if removed := set.Remove(testCase.added...); removed != len(testCase.added) {
				t.Fatalf("expected %d removed, got %d", len(testCase.added), removed)
			}

			after := ids(set.List())
			if len(before) != len(after) {
				t.Fatalf("expected %v, got %v", before, after)
			}
			for i := range before {
				if before[i] != after[i] {
					t.Fatalf("expected %v, got %v", before, after)
				}
			}
		})
	}
}

func TestRemoteStreamSetListIsCopy(t *testing.T) {
	var set RemoteStreamSet
	set.Add(protocol.Stream{ID: "a"})

	list := set.List()
	list[0].ID = "changed"

	if set.List()[0].ID != "a" {
		t.Fatal("list must not alias the set")
	}
}

func TestRemoteStreamSetRemoveUnknown(t *testing.T) {
	var set RemoteStreamSet
	set.Add(protocol.Stream{ID: "a"})

	if removed := set.Remove(protocol.Stream{ID: "b"}); removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
	if set.Len() != 1 {
		t.Fatalf("expected one stream, got %d", set.Len())
	}
}
