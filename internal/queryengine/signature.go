package queryengine

import (
	"fmt"
	"hash/fnv"
)

// Signature is the cache key a query is memoised under: the query's
// name (Go function values are not comparable or hashable, so every
// query call site supplies a stable name constant), the owning unit's
// id, and a hash of the serialised argument tuple.
type Signature struct {
	Name   string
	UnitID string
	Args   uint64
}

// NewSignature hashes args with fmt's %v formatting, which is adequate
// for the small, string/int-shaped argument tuples every query in this
// compiler takes (file paths, rule names, node ids).
func NewSignature(name, unitID string, args ...any) Signature {
	h := fnv.New64a()
	for _, a := range args {
		fmt.Fprintf(h, "%v|", a)
	}
	return Signature{Name: name, UnitID: unitID, Args: h.Sum64()}
}
