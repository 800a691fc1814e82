package orchestration

import (
	"slices"

	"github.com/voxlabs/jarvis-core/core/responses"
)

// mergeSources folds newly arrived citations into the accumulated source
// list.
//
// Citations without a web URI are dropped. When a URI recurs, the position of
// its first occurrence is kept and the payload is replaced with the most
// recent value. The merge never mutates its inputs, and merging the same
// citations twice yields the same result as merging them once.
func mergeSources(existing []responses.GroundingChunk, incoming []responses.GroundingChunk) []responses.GroundingChunk {
	merged := slices.Clone(existing)

	position := make(map[string]int, len(merged))
	for i, source := range merged {
		if source.Web != nil && source.Web.URI != "" {
			position[source.Web.URI] = i
		}
	}

	for _, source := range incoming {
		if source.Web == nil || source.Web.URI == "" {
			continue
		}

		if i, seen := position[source.Web.URI]; seen {
			merged[i] = source
			continue
		}

		position[source.Web.URI] = len(merged)
		merged = append(merged, source)
	}

	return merged
}
