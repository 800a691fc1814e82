package orchestration

import (
	"reflect"
	"slices"
	"testing"

	"github.com/voxlabs/jarvis-core/core/responses"
)

func webSource(uri, title string) responses.GroundingChunk {
	return responses.GroundingChunk{Web: &responses.WebSource{URI: uri, Title: title}}
}

func TestMergeSourcesAppendsNewSources(t *testing.T) {
	merged := mergeSources(nil, []responses.GroundingChunk{
		webSource("https://a.example", "A"),
		webSource("https://b.example", "B"),
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(merged))
	}
	if merged[0].Web.URI != "https://a.example" || merged[1].Web.URI != "https://b.example" {
		t.Fatalf("unexpected order: %v", merged)
	}
}

func TestMergeSourcesDropsSourcesWithoutURI(t *testing.T) {
	merged := mergeSources(nil, []responses.GroundingChunk{
		{Web: nil},
		{Web: &responses.WebSource{Title: "no uri"}},
		webSource("https://a.example", "A"),
	})

	if len(merged) != 1 {
		t.Fatalf("expected 1 source, got %d", len(merged))
	}
}

func TestMergeSourcesKeepsFirstPositionWithLatestPayload(t *testing.T) {
	existing := []responses.GroundingChunk{
		webSource("https://a.example", "A"),
		webSource("https://b.example", "B"),
	}

	merged := mergeSources(existing, []responses.GroundingChunk{
		webSource("https://a.example", "A updated"),
		webSource("https://c.example", "C"),
	})

	uris := make([]string, 0, len(merged))
	for _, source := range merged {
		uris = append(uris, source.Web.URI)
	}
	if !slices.Equal(uris, []string{"https://a.example", "https://b.example", "https://c.example"}) {
		t.Fatalf("unexpected order: %v", uris)
	}
	if merged[0].Web.Title != "A updated" {
		t.Fatalf("expected updated payload at first position, got %q", merged[0].Web.Title)
	}
}

func TestMergeSourcesIsIdempotent(t *testing.T) {
	incoming := []responses.GroundingChunk{
		webSource("https://a.example", "A"),
		webSource("https://a.example", "A again"),
		webSource("https://b.example", "B"),
	}

	once := mergeSources(nil, incoming)
	twice := mergeSources(once, incoming)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not idempotent: %v != %v", once, twice)
	}
	if len(once) != 2 {
		t.Fatalf("expected duplicate URI collapsed, got %d entries", len(once))
	}
	if once[0].Web.Title != "A again" {
		t.Fatalf("expected latest payload for duplicated URI, got %q", once[0].Web.Title)
	}
}

func TestMergeSourcesDoesNotMutateInputs(t *testing.T) {
	existing := []responses.GroundingChunk{webSource("https://a.example", "A")}
	snapshot := slices.Clone(existing)

	_ = mergeSources(existing, []responses.GroundingChunk{
		webSource("https://a.example", "A updated"),
		webSource("https://b.example", "B"),
	})

	if !reflect.DeepEqual(existing, snapshot) {
		t.Fatalf("existing slice mutated: %v", existing)
	}
}
