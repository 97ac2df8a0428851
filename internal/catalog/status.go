package catalog

import (
	"fmt"

	"github.com/abelbrown/catalog/internal/vocab"
)

// Collection names one fetched collection: the resources or one vocabulary.
type Collection string

// Resources is the resource collection.
const Resources Collection = "resources"

// VocabCollection returns the collection backing a vocabulary.
func VocabCollection(name vocab.Name) Collection {
	return Collection(name)
}

// Collections lists every collection in load order.
func Collections() []Collection {
	out := []Collection{Resources}
	for _, name := range vocab.All {
		out = append(out, VocabCollection(name))
	}
	return out
}

// Phase is the fetch lifecycle of a collection.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Status is the fetch state of one collection. A Failed collection keeps
// whatever pages arrived before the error and can be retried.
type Status struct {
	Phase   Phase
	Fetched bool  // completed at least one full fetch
	Err     error // set when Phase is Failed
}

// Change is delivered to subscribers whenever a collection's contents or
// status move.
type Change struct {
	Collection Collection
	Status     Status
	Generation uint64
}
