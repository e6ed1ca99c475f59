package modelgraph

import "sort"

// CollectionObserver is the extension point invoked when an owned collection
// mutates structurally. Hooks run synchronously, after the mutation has taken
// effect on the collection. They are never invoked for whole-collection
// replacement; assignment rewraps instead. Install one per class via
// ClassDescriptor.SetObserver; the default is a no-op.
type CollectionObserver interface {
	ListDidAdd(owner *Instance, list *OwnedList, index int, value any)
	ListDidRemove(owner *Instance, list *OwnedList, value any)
	ListDidSort(owner *Instance, list *OwnedList)
	MapDidSet(owner *Instance, m *OwnedMap, key string, value any)
	MapDidDelete(owner *Instance, m *OwnedMap, value any)
}

// NoopObserver implements CollectionObserver doing nothing. Embed it to
// override a subset of hooks.
type NoopObserver struct{}

func (NoopObserver) ListDidAdd(*Instance, *OwnedList, int, any) {}
func (NoopObserver) ListDidRemove(*Instance, *OwnedList, any)   {}
func (NoopObserver) ListDidSort(*Instance, *OwnedList)          {}
func (NoopObserver) MapDidSet(*Instance, *OwnedMap, string, any) {}
func (NoopObserver) MapDidDelete(*Instance, *OwnedMap, any)      {}

var _ CollectionObserver = NoopObserver{}

// OwnedList wraps an ordered sequence assigned to an instance field. It knows
// the instance and the keypath it is attached to, and notifies the owner of
// every structural mutation. The owner reference is a lookup back-reference,
// not ownership.
type OwnedList struct {
	owner   *Instance
	keypath string
	items   []any
}

func newOwnedList(owner *Instance, keypath string) *OwnedList {
	return &OwnedList{owner: owner, keypath: keypath}
}

// wrapList builds an owned list from a raw slice, wrapping nested containers
// under extended keypaths. It does not fire mutation hooks; wholesale
// wrapping is handled by field assignment.
func wrapList(owner *Instance, keypath string, src []any) *OwnedList {
	l := newOwnedList(owner, keypath)
	l.items = make([]any, len(src))
	for i, v := range src {
		l.items[i] = wrapValue(owner, concatKeypath(keypath, i), v)
	}
	return l
}

// Owner returns the instance this list hangs off.
func (l *OwnedList) Owner() *Instance { return l.owner }

// Keypath returns the attribute path this list is attached under.
func (l *OwnedList) Keypath() string { return l.keypath }

func (l *OwnedList) Len() int { return len(l.items) }

func (l *OwnedList) At(i int) any { return l.items[i] }

// Values returns a copy of the backing elements.
func (l *OwnedList) Values() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// Contains reports membership; instances compare by identity.
func (l *OwnedList) Contains(v any) bool {
	return l.indexOf(v) >= 0
}

func (l *OwnedList) indexOf(v any) int {
	if obj, ok := v.(*Instance); ok {
		for i, it := range l.items {
			if it == any(obj) {
				return i
			}
		}
		return -1
	}
	for i, it := range l.items {
		if it == v {
			return i
		}
	}
	return -1
}

// Append adds values to the end of the list, notifying the owner per element.
func (l *OwnedList) Append(vals ...any) {
	for _, v := range vals {
		v = wrapValue(l.owner, concatKeypath(l.keypath, len(l.items)), v)
		l.items = append(l.items, v)
		if l.owner != nil {
			l.owner.listDidAdd(l, len(l.items)-1, v)
		}
	}
}

// Insert adds a value at index i, notifying the owner.
func (l *OwnedList) Insert(i int, v any) {
	v = wrapValue(l.owner, concatKeypath(l.keypath, i), v)
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	if l.owner != nil {
		l.owner.listDidAdd(l, i, v)
	}
}

// RemoveAt removes and returns the element at index i, notifying the owner.
func (l *OwnedList) RemoveAt(i int) any {
	v := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	if l.owner != nil {
		l.owner.listDidRemove(l, v)
	}
	return v
}

// Remove removes the first occurrence of v, reporting whether anything was
// removed.
func (l *OwnedList) Remove(v any) bool {
	i := l.indexOf(v)
	if i < 0 {
		return false
	}
	l.RemoveAt(i)
	return true
}

// Sort reorders the list in place, notifying the owner once.
func (l *OwnedList) Sort(less func(a, b any) bool) {
	sort.SliceStable(l.items, func(i, j int) bool { return less(l.items[i], l.items[j]) })
	if l.owner != nil {
		l.owner.listDidSort(l)
	}
}

// append without hooks; used by relationship sync bootstrap.
func (l *OwnedList) appendRaw(v any) {
	l.items = append(l.items, v)
}

// OwnedMap wraps a keyed mapping assigned to an instance field. Iteration
// follows insertion order.
type OwnedMap struct {
	owner   *Instance
	keypath string
	keys    []string
	items   map[string]any
}

func newOwnedMap(owner *Instance, keypath string) *OwnedMap {
	return &OwnedMap{owner: owner, keypath: keypath, items: map[string]any{}}
}

// wrapMap builds an owned map from a raw map, wrapping nested containers
// under extended keypaths. Keys are recorded in sorted order since raw Go
// maps carry none.
func wrapMap(owner *Instance, keypath string, src map[string]any) *OwnedMap {
	m := newOwnedMap(owner, keypath)
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.keys = append(m.keys, k)
		m.items[k] = wrapValue(owner, concatKeypath(keypath, k), src[k])
	}
	return m
}

// Owner returns the instance this map hangs off.
func (m *OwnedMap) Owner() *Instance { return m.owner }

// Keypath returns the attribute path this map is attached under.
func (m *OwnedMap) Keypath() string { return m.keypath }

func (m *OwnedMap) Len() int { return len(m.keys) }

// Keys returns a copy of the keys in insertion order.
func (m *OwnedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *OwnedMap) Get(k string) (any, bool) {
	v, ok := m.items[k]
	return v, ok
}

// Set stores a value under k, notifying the owner.
func (m *OwnedMap) Set(k string, v any) {
	v = wrapValue(m.owner, concatKeypath(m.keypath, k), v)
	if _, exists := m.items[k]; !exists {
		m.keys = append(m.keys, k)
	}
	m.items[k] = v
	if m.owner != nil {
		m.owner.mapDidSet(m, k, v)
	}
}

// Delete removes k, reporting whether it existed and notifying the owner.
func (m *OwnedMap) Delete(k string) bool {
	v, exists := m.items[k]
	if !exists {
		return false
	}
	delete(m.items, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	if m.owner != nil {
		m.owner.mapDidDelete(m, v)
	}
	return true
}

// wrapValue wraps raw containers into owned variants attached at keypath;
// scalars and instances pass through.
func wrapValue(owner *Instance, keypath string, v any) any {
	switch t := v.(type) {
	case []any:
		return wrapList(owner, keypath, t)
	case map[string]any:
		return wrapMap(owner, keypath, t)
	case *OwnedList:
		if t.owner == owner && t.keypath == keypath {
			return t
		}
		return wrapList(owner, keypath, t.items)
	case *OwnedMap:
		if t.owner == owner && t.keypath == keypath {
			return t
		}
		raw := make(map[string]any, len(t.items))
		for k, val := range t.items {
			raw[k] = val
		}
		nm := wrapMap(owner, keypath, raw)
		nm.keys = append([]string(nil), t.keys...)
		return nm
	default:
		return v
	}
}
