package basicobj

// Record is an instance record that can be packed for GPU upload. Marshal must
// produce the tightly packed layout the record's shader core declares.
type Record interface {
	Size() int
	Marshal() []byte
}

// RenderList accumulates the instance records to draw this frame, one
// append-only sublist per primitive kind. It is rebuilt (or Clear()ed and
// refilled) every frame by scene code.
type RenderList[R Record] struct {
	lists [NumKinds][]R
}

// NewRenderList creates an empty RenderList.
//
// Returns:
//   - *RenderList[R]: the empty list
func NewRenderList[R Record]() *RenderList[R] {
	return &RenderList[R]{}
}

// Add appends a record to the sublist for a kind.
//
// Parameters:
//   - kind: the primitive kind the record replicates
//   - record: the instance record
func (l *RenderList[R]) Add(kind BasicObj, record R) {
	l.lists[kind.Index()] = append(l.lists[kind.Index()], record)
}

// Records returns the sublist for a kind. The returned slice is owned by the
// list and valid until the next Add or Clear.
//
// Parameters:
//   - kind: the primitive kind
//
// Returns:
//   - []R: the records queued for that kind
func (l *RenderList[R]) Records(kind BasicObj) []R {
	return l.lists[kind.Index()]
}

// Len returns the number of records queued for a kind.
func (l *RenderList[R]) Len(kind BasicObj) int {
	return len(l.lists[kind.Index()])
}

// Total returns the number of records queued across all kinds.
func (l *RenderList[R]) Total() int {
	total := 0
	for i := range l.lists {
		total += len(l.lists[i])
	}
	return total
}

// Clear empties every sublist, retaining capacity. Clearing an already empty
// list is a no-op.
func (l *RenderList[R]) Clear() {
	for i := range l.lists {
		l.lists[i] = l.lists[i][:0]
	}
}
