package materialize

import (
	"fmt"
	"sort"
)

// origin tells which step wrote a staged file
type origin string

const (
	originPreGen  origin = "pre_gen_project hook"
	originRender  origin = "template"
	originPostGen origin = "post_gen_project hook"
)

// ledger records the origin of every staged file
type ledger struct {
	entries map[string]origin
}

func newLedger() *ledger {
	return &ledger{entries: make(map[string]origin)}
}

// record registers rel as written by o. When rel was already staged it
// returns a warning describing the overwrite.
func (l *ledger) record(rel string, o origin) string {
	prev, ok := l.entries[rel]
	l.entries[rel] = o
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s written by %s was overwritten by %s", rel, prev, o)
}

// paths returns the staged paths whose last writer is one of origins, sorted
func (l *ledger) paths(origins ...origin) []string {
	var out []string
	for p, v := range l.entries {
		for _, o := range origins {
			if v == o {
				out = append(out, p)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
