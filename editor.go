// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rrb

// Editor is a transient, single-owner view of a Tree, used to batch many
// mutations without paying the copy-on-write cost of each one. Every
// node an Editor creates or touches is tagged with its private token;
// subsequent mutations through the same Editor can then overwrite that
// node in place instead of cloning it, as long as nothing else has taken
// a reference to it in the meantime.
//
// An Editor is not safe for concurrent use, and its mutating methods
// return the same *Editor they were called on so calls can be chained.
type Editor[V any] struct {
	size  int
	shift uint
	root  *node[V]
	tail  []V
	pool  *nodePool[V]
	token *token
}

// Transient converts t into an Editor in O(1): the Editor starts out
// sharing t's root and tail, and the first mutation through it will
// clone-on-write exactly as a persistent operation would, because the
// shared nodes don't carry the Editor's token yet. t itself is left
// untouched and remains a valid, independent Tree.
func (t *Tree[V]) Transient() *Editor[V] {
	return &Editor[V]{
		size:  t.size,
		shift: t.shift,
		root:  t.root.inc(),
		tail:  cloneValues(t.tail),
		pool:  t.pool,
		token: newToken(),
	}
}

// Persistent converts e into an O(1)-shared Tree and invalidates e's
// edit token, so any further calls on e would be clone-on-write against a
// token nobody owns anymore; Editor does not attempt to detect reuse
// after Persistent, matching the reference implementation's transient
// contract that a spent transient must not be touched again.
func (e *Editor[V]) Persistent() *Tree[V] {
	t := &Tree[V]{size: e.size, shift: e.shift, root: e.root, tail: e.tail, pool: e.pool}
	e.token = newToken()
	return t
}

func (e *Editor[V]) tailOffset() int { return e.size - len(e.tail) }

// Get returns the value at idx, exactly as Tree.Get.
func (e *Editor[V]) Get(idx int) V {
	outOfRange(idx, e.size)
	off := e.tailOffset()
	if idx >= off {
		return e.tail[idx-off]
	}
	n, shift := e.root, e.shift
	for shift > 0 {
		slot, residual := n.indexInNode(shift, idx)
		n = n.children[slot]
		idx = residual
		shift -= bits
	}
	return n.values[idx]
}

// Update replaces the value at idx in place when the owning node is
// exclusively owned by e's edit token, and clone-on-writes it otherwise.
func (e *Editor[V]) Update(idx int, fn func(V) V) *Editor[V] {
	outOfRange(idx, e.size)
	off := e.tailOffset()
	if idx >= off {
		e.tail[idx-off] = fn(e.tail[idx-off])
		return e
	}
	oldRoot := e.root
	e.root = updateSpineMut(oldRoot, e.shift, idx, fn, e.pool, e.token)
	if e.root != oldRoot {
		oldRoot.dec(e.pool)
	}
	return e
}

func updateSpineMut[V any](n *node[V], shift uint, idx int, fn func(V) V, pool *nodePool[V], owner *token) *node[V] {
	m := n
	if !n.canMutate(owner) {
		if shift == 0 {
			m = n.cloneLeaf(pool, owner)
		} else {
			m = n.cloneInner(pool, owner)
		}
	}
	if shift == 0 {
		m.values[idx] = fn(m.values[idx])
		return m
	}
	slot, residual := m.indexInNode(shift, idx)
	old := m.children[slot]
	newChild := updateSpineMut(old, shift-bits, residual, fn, pool, owner)
	if newChild != old {
		// Whether m was mutated in place or freshly cloned, the slot's
		// existing reference to old is being replaced; release it.
		old.dec(pool)
		m.children[slot] = newChild
	}
	return m
}

// PushBack appends v, mutating the tail in place when e owns it.
func (e *Editor[V]) PushBack(v V) *Editor[V] {
	if len(e.tail) < branch {
		e.tail = append(e.tail, v)
		e.size++
		return e
	}
	oldRoot := e.root
	newRoot, newShift := pushTailMut(oldRoot, e.shift, e.tail, e.pool, e.token)
	if newShift == e.shift && newRoot != oldRoot {
		// The wrapping branches of pushTailMut inc() oldRoot themselves
		// when they keep it on as a child (newShift grows); this is the
		// non-wrapping "recursed in place or cloned" branch, where the
		// old top reference needs releasing exactly like a child slot
		// would inside pushTailIntoMut.
		oldRoot.dec(e.pool)
	}
	e.root, e.shift = newRoot, newShift
	e.tail = []V{v}
	e.size++
	return e
}

// PushBackAll appends every value in values under a single edit session,
// a convenience for bulk loading equivalent to, but cheaper than, calling
// PushBack in a loop from outside a transient session.
func (e *Editor[V]) PushBackAll(values ...V) *Editor[V] {
	for _, v := range values {
		e.PushBack(v)
	}
	return e
}

func pushTailMut[V any](root *node[V], shift uint, tail []V, pool *nodePool[V], owner *token) (*node[V], uint) {
	leaf := newLeaf(cloneValues(tail), owner, pool)
	if root == nil {
		return leaf, 0
	}
	if shift == 0 {
		if len(root.values) < branch {
			return newRelaxed([]*node[V]{root.inc(), leaf}, []int{len(root.values), len(root.values) + len(leaf.values)}, owner, pool), bits
		}
		return newRegular([]*node[V]{root.inc(), leaf}, owner, pool), bits
	}
	if !root.isFull(shift) {
		if m, ok := pushTailIntoMut(root, shift, leaf, pool, owner); ok {
			return m, shift
		}
	}
	path := newPathMut(leaf, shift, owner, pool)
	if !root.isFull(shift) {
		sz := root.count(shift)
		return newRelaxed([]*node[V]{root.inc(), path}, []int{sz, sz + len(leaf.values)}, owner, pool), shift + bits
	}
	return newRegular([]*node[V]{root.inc(), path}, owner, pool), shift + bits
}

func newPathMut[V any](leaf *node[V], shift uint, owner *token, pool *nodePool[V]) *node[V] {
	if shift == bits {
		return newRegular([]*node[V]{leaf}, owner, pool)
	}
	return newRegular([]*node[V]{newPathMut(leaf, shift-bits, owner, pool)}, owner, pool)
}

// pushTailIntoMut is pushTailInto's transient twin: it mutates n in
// place when e's token already owns it exclusively, and reports
// ok=false under the same no-spare-slot condition so its caller falls
// back to wrapping a level higher instead of overrunning n's bound.
func pushTailIntoMut[V any](n *node[V], shift uint, leaf *node[V], pool *nodePool[V], owner *token) (*node[V], bool) {
	if shift == bits {
		if len(n.children) == branch {
			return nil, false
		}
		m := n
		if !n.canMutate(owner) {
			m = n.cloneInner(pool, owner)
		}
		m.children = append(m.children, leaf)
		if m.kind == kindRelaxed {
			last := m.sizes[len(m.sizes)-1]
			m.sizes = append(m.sizes, last+len(leaf.values))
		}
		return m, true
	}
	last := len(n.children) - 1
	if !n.children[last].isFull(shift - bits) {
		m := n
		cloned := false
		if !n.canMutate(owner) {
			m = n.cloneInner(pool, owner)
			cloned = true
		}
		// old is read from m, not n: cloneInner already bumped its
		// refcount above, so the recursive call sees the same ownership
		// picture m's caller would.
		old := m.children[last]
		if newLast, ok := pushTailIntoMut(old, shift-bits, leaf, pool, owner); ok {
			if newLast != old {
				old.dec(pool)
			}
			m.children[last] = newLast
			if m.kind == kindRelaxed {
				m.sizes[len(m.sizes)-1] += len(leaf.values)
			}
			return m, true
		}
		// No room deeper after all (a relaxed child can be full-width
		// without isFull saying so); discard the speculative clone, if
		// any, and fall through to growing a sibling at this level.
		if cloned {
			m.dec(pool)
		}
	}
	if len(n.children) == branch {
		return nil, false
	}
	m := n
	if !n.canMutate(owner) {
		m = n.cloneInner(pool, owner)
	}
	m.children = append(m.children, newPathMut(leaf, shift-bits, owner, pool))
	if m.kind == kindRelaxed {
		lastSize := m.sizes[len(m.sizes)-1]
		m.sizes = append(m.sizes, lastSize+len(leaf.values))
	}
	return m, true
}

// TransientTake is Take's transient twin: it keeps the first n elements
// of e, mutating in place any node e's token already exclusively owns
// instead of cloning it.
func (e *Editor[V]) TransientTake(n int) *Editor[V] {
	outOfRangeInclusive(n, e.size)
	if n == e.size {
		return e
	}
	if n == 0 {
		e.root.dec(e.pool)
		e.root, e.shift, e.tail, e.size = nil, 0, nil, 0
		return e
	}
	off := e.tailOffset()
	if n > off {
		e.tail = cloneValues(e.tail[:n-off])
		e.size = n
		return e
	}
	newRoot, newShift, newTail := sliceRightMut(e.root, e.shift, n, e.pool, e.token)
	e.root, e.shift, e.tail, e.size = newRoot, newShift, newTail, n
	return e
}

// TransientDrop is Drop's transient twin: it removes the first n
// elements of e in place wherever ownership allows.
func (e *Editor[V]) TransientDrop(n int) *Editor[V] {
	outOfRangeInclusive(n, e.size)
	if n == 0 {
		return e
	}
	if n == e.size {
		e.root.dec(e.pool)
		e.root, e.shift, e.tail, e.size = nil, 0, nil, 0
		return e
	}
	off := e.tailOffset()
	if n >= off {
		e.root.dec(e.pool)
		e.root, e.shift = nil, 0
		e.tail = cloneValues(e.tail[n-off:])
		e.size -= n
		return e
	}
	newRoot, newShift := sliceLeftMut(e.root, e.shift, n, e.pool, e.token)
	e.root, e.shift = newRoot, newShift
	e.size -= n
	return e
}

// adoptSiblings moves every sibling already exclusively owned by owner
// directly into the merged result without an extra reference (such a
// sibling already carries owner, so the owner assignment below leaves
// it as it is); any sibling not exclusively
// owned (in particular every node reachable from the other Tree passed
// to TransientConcat, which must stay valid and unchanged) is shared by
// incrementing its refcount exactly as a persistent merge would.
func adoptSiblings[V any](siblings []*node[V], owner *token, adopted *bool) {
	for _, c := range siblings {
		if c.canMutate(owner) {
			c.owner = owner
			*adopted = true
			continue
		}
		c.inc()
	}
}

// mergeBoundaryMut is TransientConcat's merge core, identical in shape to
// mergeBoundary but substituting adoptSiblings for the plain inc() a
// persistent merge uses to retain an untouched sibling.
func mergeBoundaryMut[V any](left, right *node[V], shift uint, owner *token, pool *nodePool[V], adopted *bool) ([]*node[V], []int) {
	if shift == 0 {
		combined := cloneValues(left.values)
		combined = cloneValuesInto(combined, right.values)
		return packLeaves(combined, owner, pool)
	}

	lastLeft := len(left.children) - 1
	centerNodes, centerSizes := mergeBoundaryMut(left.children[lastLeft], right.children[0], shift-bits, owner, pool, adopted)

	leftSizes := left.childSizes(shift)
	rightSizes := right.childSizes(shift)

	leftRest := left.children[:lastLeft]
	rightRest := right.children[1:]
	adoptSiblings(leftRest, owner, adopted)
	adoptSiblings(rightRest, owner, adopted)

	entries := make([]*node[V], 0, len(leftRest)+len(centerNodes)+len(rightRest))
	sizes := make([]int, 0, cap(entries))
	entries = append(entries, leftRest...)
	sizes = append(sizes, leftSizes[:lastLeft]...)
	entries = append(entries, centerNodes...)
	sizes = append(sizes, centerSizes...)
	entries = append(entries, rightRest...)
	sizes = append(sizes, rightSizes[1:]...)

	return packChildren(entries, sizes, owner, pool)
}

// concatTreesMut is TransientConcat's counterpart to concatTrees: left's
// existing structure is consumed directly (no top-level retain, since
// nothing but e needs it to stay valid), while right's is protected
// exactly like a persistent concat protects its operand.
func concatTreesMut[V any](leftRoot *node[V], leftShift uint, leftSize int, rightRoot *node[V], rightShift uint, rightSize int, pool *nodePool[V], owner *token, adopted *bool) (*node[V], uint) {
	if leftRoot == nil {
		return rightRoot.inc(), rightShift
	}
	if rightRoot == nil {
		return leftRoot, leftShift
	}

	rightRoot.inc()
	for leftShift < rightShift {
		leftRoot = newRelaxed([]*node[V]{leftRoot}, []int{leftSize}, owner, pool)
		leftShift += bits
	}
	for rightShift < leftShift {
		rightRoot = newRelaxed([]*node[V]{rightRoot}, []int{rightSize}, owner, pool)
		rightShift += bits
	}

	nodes, sizes := mergeBoundaryMut(leftRoot, rightRoot, leftShift, owner, pool, adopted)
	if len(nodes) == 1 {
		return nodes[0], leftShift
	}
	cum := make([]int, len(sizes))
	total := 0
	for i, s := range sizes {
		total += s
		cum[i] = total
	}
	return newRelaxed(nodes, cum, owner, pool), leftShift + bits
}

// TransientConcat appends other's elements after e's in place, folding
// e's tail into its body first; when other holds only a tail (no tree
// body), its values are pushed onto e one by one instead. other is read
// through, never mutated, and remains valid for the caller to keep using.
//
// Any node e's token already exclusively owns is adopted into the merge
// result (it keeps its owner, no refcount change) instead of being
// shared like a persistent Concat would share it; every other node
// (everything from other, and anything in e not yet touched by this
// Editor) is shared by incrementing its refcount as usual.
//
// TransientConcat is the one Editor method without a safe failure mode:
// folding e's tail may already have mutated e's root in place, and
// adopted nodes are referenced by the new merge nodes without a
// refcount of their own, so a panic partway through (for instance from
// an injected allocation fault) leaves e with no way to roll back. e must
// be discarded, not reused or retried, if TransientConcat does not
// return normally. Adoption never changes a node's values or children,
// so every node stays internally consistent; it is the Editor's
// bookkeeping (a root that may already hold the folded tail while e's
// tail and size still count it), not its nodes, that becomes
// unrecoverable.
func (e *Editor[V]) TransientConcat(other *Tree[V]) *Editor[V] {
	if other.size == 0 {
		return e
	}
	if e.size == 0 {
		e.root.dec(e.pool)
		e.size = other.size
		e.shift = other.shift
		e.root = other.root.inc()
		e.tail = cloneValues(other.tail)
		return e
	}
	if other.root == nil {
		for _, v := range other.tail {
			e.PushBack(cloneVal(v))
		}
		return e
	}

	leftRoot, leftShift := e.root, e.shift
	leftSize := e.size
	if len(e.tail) > 0 {
		leftRoot, leftShift = pushTailMut(leftRoot, e.shift, e.tail, e.pool, e.token)
	}

	adopted := new(bool)
	mergedRoot, mergedShift := concatTreesMut(leftRoot, leftShift, leftSize, other.root, other.shift, other.tailOffset(), e.pool, e.token, adopted)

	e.root, e.shift = mergedRoot, mergedShift
	e.tail = cloneValues(other.tail)
	e.size += other.size
	return e
}
