package layout

// walker carries the bookkeeping of the tidy-tree passes for one node.
// Field names follow Buchheim et al.: prelim (z), mod (m), change (c),
// shift (s), thread (t), ancestor (a) and the default ancestor (A).
type walker struct {
	node     *Node
	parent   *walker
	children []*walker
	index    int

	prelim, mod, change, shift float64
	thread                     *walker
	ancestor                   *walker
	defaultAncestor            *walker
}

func wrap(node *Node, index int) *walker {
	w := &walker{node: node, index: index}
	w.ancestor = w
	for i, child := range node.Children {
		cw := wrap(child, i)
		cw.parent = w
		w.children = append(w.children, cw)
	}
	return w
}

func tidy(root *Node, sep SeparationFunc) {
	t := wrap(root, 0)
	// A synthetic parent gives the root a sibling list and a modifier slot.
	top := &walker{children: []*walker{t}}
	t.parent = top

	postOrder(t, func(v *walker) { firstWalk(v, sep) })
	top.mod = -t.prelim
	preOrder(t, secondWalk)
}

func postOrder(v *walker, fn func(*walker)) {
	for _, child := range v.children {
		postOrder(child, fn)
	}
	fn(v)
}

func preOrder(v *walker, fn func(*walker)) {
	fn(v)
	for _, child := range v.children {
		preOrder(child, fn)
	}
}

func firstWalk(v *walker, sep SeparationFunc) {
	siblings := v.parent.children
	var w *walker
	if v.index > 0 {
		w = siblings[v.index-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + sep(v.node, w.node)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if w != nil {
		v.prelim = w.prelim + sep(v.node, w.node)
	}

	ancestor := v.parent.defaultAncestor
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.defaultAncestor = apportion(v, w, ancestor, sep)
}

func secondWalk(v *walker) {
	v.node.breadth = v.prelim + v.parent.mod
	v.mod += v.parent.mod
}

// apportion pushes the subtree of v away from the subtrees of its left
// siblings until their contours no longer overlap.
func apportion(v, w, ancestor *walker, sep SeparationFunc) *walker {
	if w == nil {
		return ancestor
	}

	vip, vop := v, v
	vim := w
	vom := vip.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v

		shift := vim.prelim + sim - vip.prelim - sip + sep(vim.node, vip.node)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *walker) *walker {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *walker) *walker {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *walker, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *walker) {
	shift, change := 0.0, 0.0
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *walker) *walker {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}
