package mutation

import (
	"slices"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// overlay remembers what this session changed locally so a full reload
// does not lose it. The remote API does not necessarily persist writes,
// so confirmed changes are kept too, not only in-flight ones.
type overlay struct {
	created   []domain.Recipe // oldest first
	deleted   map[int]struct{}
	confirmed map[int]domain.Patch
	inflight  map[uint64]pendingPatch
	nextToken uint64

	// edits lists, per id, the edits started while an older edit on that
	// id is still in flight. A failed edit must not revert fields a later
	// edit has set.
	edits map[int][]tokenPatch
}

type pendingPatch struct {
	id    int
	patch domain.Patch
}

type tokenPatch struct {
	token uint64
	patch domain.Patch
}

func newOverlay() *overlay {
	return &overlay{
		deleted:   make(map[int]struct{}),
		confirmed: make(map[int]domain.Patch),
		inflight:  make(map[uint64]pendingPatch),
		edits:     make(map[int][]tokenPatch),
	}
}

func (o *overlay) addCreated(r domain.Recipe) {
	o.created = append(o.created, r.Clone())
}

func (o *overlay) forgetCreated(id int) {
	for i := range o.created {
		if o.created[i].ID == id {
			o.created = append(o.created[:i], o.created[i+1:]...)
			return
		}
	}
}

func (o *overlay) beginEdit(id int, p domain.Patch) uint64 {
	o.nextToken++
	o.inflight[o.nextToken] = pendingPatch{id: id, patch: p}
	o.edits[id] = append(o.edits[id], tokenPatch{token: o.nextToken, patch: p})
	return o.nextToken
}

// editedAfter composes every edit on id started after token, in flight
// or already confirmed.
func (o *overlay) editedAfter(id int, token uint64) domain.Patch {
	var out domain.Patch
	for _, e := range o.edits[id] {
		if e.token > token {
			out = out.Then(e.patch)
		}
	}
	return out
}

func (o *overlay) finishEdit(token uint64, ok bool) {
	pp, found := o.inflight[token]
	if !found {
		return
	}
	delete(o.inflight, token)
	if ok {
		o.confirmed[pp.id] = o.confirmed[pp.id].Then(pp.patch)
	}
	o.pruneEdits(pp.id)
}

// pruneEdits keeps only the edits some in-flight edit on id may still
// need to consult.
func (o *overlay) pruneEdits(id int) {
	oldest := uint64(0)
	for token, pp := range o.inflight {
		if pp.id == id && (oldest == 0 || token < oldest) {
			oldest = token
		}
	}
	if oldest == 0 {
		delete(o.edits, id)
		return
	}
	log := o.edits[id]
	i := 0
	for i < len(log) && log[i].token < oldest {
		i++
	}
	o.edits[id] = log[i:]
}

// apply re-applies the overlay on top of a freshly loaded store: created
// records the fetch does not know about go back to the front (newest
// first), deleted ids are removed, then confirmed and in-flight patches
// are merged in that order.
func (o *overlay) apply(s domain.RecordStore) (injected, removed int) {
	for _, r := range o.created {
		if _, gone := o.deleted[r.ID]; gone {
			continue
		}
		if ok, err := s.InsertIfAbsent(r); err == nil && ok {
			injected++
		}
	}
	for id := range o.deleted {
		if _, _, err := s.Remove(id); err == nil {
			removed++
		}
	}
	for id, p := range o.confirmed {
		_, _, _ = s.Merge(id, p)
	}
	tokens := make([]uint64, 0, len(o.inflight))
	for token := range o.inflight {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)
	for _, token := range tokens {
		pp := o.inflight[token]
		_, _, _ = s.Merge(pp.id, pp.patch)
	}
	return injected, removed
}

