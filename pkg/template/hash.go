package template

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// hashParts digests the joined context parts. sha256 keeps fingerprints
// collision-safe enough to key a shared cache.
func hashParts(parts []string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

// sortedMap renders a map as key=value pairs in key order so equal maps
// always hash equally.
func sortedMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+m[k])
	}
	return strings.Join(pairs, "&")
}

// sortedMultiMap is sortedMap for multi-valued maps.
func sortedMultiMap(m map[string][]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+strings.Join(m[k], ","))
	}
	return strings.Join(pairs, "&")
}
