package token

// Hideset is an immutable set of macro names forbidden from re-expansion
// on a given token. It is implemented as a structurally-shared cons-list
// rather than a copied map: sibling tokens produced by one expansion share
// the same tail, so Add allocates at most one new cell per call and Union
// one per name it adds. This
// is the "hide-set" handle DESIGN NOTES calls for to keep large macro
// expansions cheap.
type Hideset struct {
	name string
	rest *Hideset
}

// EmptyHideset is the hideset every freshly lexed token starts with.
var EmptyHideset *Hideset

// Contains reports whether name is a member of h.
func (h *Hideset) Contains(name string) bool {
	for n := h; n != nil; n = n.rest {
		if n.name == name {
			return true
		}
	}
	return false
}

// Add returns a new handle for h ∪ {name}. If name is already present, h
// itself is returned unchanged.
func (h *Hideset) Add(name string) *Hideset {
	if h.Contains(name) {
		return h
	}
	return &Hideset{name: name, rest: h}
}

// Union returns a new handle for h ∪ other.
func (h *Hideset) Union(other *Hideset) *Hideset {
	if other == nil {
		return h
	}
	res := h
	for n := other; n != nil; n = n.rest {
		res = res.Add(n.name)
	}
	return res
}

// Intersect returns a new handle containing only names present in both
// h and other, used when closing a function-like macro's hideset (the
// closing ")" token's hideset is intersected with the macro name token's).
func (h *Hideset) Intersect(other *Hideset) *Hideset {
	var res *Hideset
	for n := h; n != nil; n = n.rest {
		if other.Contains(n.name) {
			res = res.Add(n.name)
		}
	}
	return res
}
