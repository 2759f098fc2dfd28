package search

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/DrPhilDSI/harmony-scheduler/internal/core/build"
)

// modelSeed derives a stable seed from the model's content so that the same
// model (same resources, ops, and products, in the same order) always seeds
// the search identically. It deliberately never touches wall-clock time or
// process entropy: that is what makes repeated Solve calls on the same
// model produce the same assignments.
func modelSeed(m *build.Model) int64 {
	h := fnv.New64a()
	resIDs := make([]string, len(m.Resources))
	for i, r := range m.Resources {
		resIDs[i] = r.ID
	}
	sort.Strings(resIDs)
	for _, id := range resIDs {
		fmt.Fprintf(h, "R:%s|", id)
	}
	for _, op := range m.Ops {
		fmt.Fprintf(h, "O:%s:%d:%s:%d|", op.Product, op.OpIndex, op.Capability, op.Duration)
	}
	for _, p := range m.Products {
		fmt.Fprintf(h, "P:%s:%s:%d|", p.ID, p.Family, p.DueMinutes)
	}
	return int64(h.Sum64())
}
