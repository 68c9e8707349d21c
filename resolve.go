package bramble

import "fmt"

// Rand is the randomness used by generation. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// ChainLink joins two elements: the origin of NextTypeKey is placed on
// anchor ConnectorIndex of TypeKey's connector for NextTypeKey.
type ChainLink struct {
	TypeKey        string
	NextTypeKey    string
	ConnectorIndex int
}

// ChainSpec describes one chain. A spec with L links yields L+1 nodes:
// Start followed by the NextTypeKey of every link.
type ChainSpec struct {
	Start string
	Links []ChainLink
}

// Len returns the number of links.
func (s ChainSpec) Len() int { return len(s.Links) }

// Keys returns the element key of every node of the chain in order.
func (s ChainSpec) Keys() []string {
	keys := make([]string, 0, len(s.Links)+1)
	keys = append(keys, s.Start)
	for _, l := range s.Links {
		keys = append(keys, l.NextTypeKey)
	}
	return keys
}

// intInRange returns a uniform integer in [lo, hi].
func intInRange(rng Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// Resolve walks the connector graph of creatureType from start and returns a
// chain whose length is drawn uniformly from [minLen, maxLen]. At each step
// the next element is drawn uniformly from the current element's connector
// keys and the anchor uniformly from that connector's anchors. Reaching an
// element without connectors before the drawn length fails with
// ErrEmptyConnectorSet; the chain is never truncated.
func Resolve(cat Catalog, creatureType, start string, minLen, maxLen int, rng Rand) (ChainSpec, error) {
	if minLen < 0 || maxLen < 0 || minLen > maxLen {
		return ChainSpec{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidChainLength, minLen, maxLen)
	}
	if _, err := cat.Element(creatureType, start); err != nil {
		return ChainSpec{}, err
	}

	n := intInRange(rng, minLen, maxLen)
	spec := ChainSpec{Start: start, Links: make([]ChainLink, 0, n)}
	cur := start
	for i := 0; i < n; i++ {
		def, err := cat.Element(creatureType, cur)
		if err != nil {
			return ChainSpec{}, err
		}
		keys := def.ConnectorKeys()
		if len(keys) == 0 {
			return ChainSpec{}, fmt.Errorf("%w: %s/%s at link %d of %d",
				ErrEmptyConnectorSet, creatureType, cur, i, n)
		}
		next := keys[rng.IntN(len(keys))]
		count := def.Connectors[next]
		if count <= 0 {
			return ChainSpec{}, fmt.Errorf("%w: %s/%s -> %s has connector count %d",
				ErrInvalidCatalog, creatureType, cur, next, count)
		}
		spec.Links = append(spec.Links, ChainLink{
			TypeKey:        cur,
			NextTypeKey:    next,
			ConnectorIndex: rng.IntN(count),
		})
		cur = next
	}
	logger.Debug("chain resolved", "type", creatureType, "start", start, "links", n)
	return spec, nil
}

// ResolveN resolves a chain of exactly links links.
func ResolveN(cat Catalog, creatureType, start string, links int, rng Rand) (ChainSpec, error) {
	return Resolve(cat, creatureType, start, links, links, rng)
}
