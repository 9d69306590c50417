package connection

import "github.com/vanshika/profilegraph/internal/domain"

// entry is one queued profile. parent indexes the entry it was discovered
// from; the root has parent -1.
type entry struct {
	id     domain.ProfileID
	parent int
	depth  int
}

// frontier is a FIFO queue backed by an append-only arena. Dequeued entries
// stay in the arena so a partial connection can be rebuilt from parent links
// instead of being copied on every enqueue.
type frontier struct {
	entries []entry
	head    int
}

func newFrontier(root domain.ProfileID) *frontier {
	return &frontier{
		entries: []entry{{id: root, parent: -1}},
	}
}

func (f *frontier) push(id domain.ProfileID, parent int) {
	f.entries = append(f.entries, entry{
		id:     id,
		parent: parent,
		depth:  f.entries[parent].depth + 1,
	})
}

func (f *frontier) pop() (int, bool) {
	if f.head >= len(f.entries) {
		return -1, false
	}
	idx := f.head
	f.head++
	return idx, true
}

func (f *frontier) id(idx int) domain.ProfileID {
	return f.entries[idx].id
}

// connection returns the ids from the first hop after the root up to and
// including idx. The root's connection is empty.
func (f *frontier) connection(idx int) Connection {
	depth := f.entries[idx].depth
	path := make(Connection, depth)
	for i := idx; depth > 0; i = f.entries[i].parent {
		depth--
		path[depth] = f.entries[i].id
	}
	return path
}
