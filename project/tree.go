package project

// ModuleTree arranges a Project's flat module list into a namespace tree
// keyed by path component, mirroring original_source's shared.rs
// ModuleTree. The Go generator in codegen does not walk it: it emits one
// file per module straight from Project.Modules.
type ModuleTree struct {
	id       *ModuleID
	name     string
	types    []UserType
	order    []string
	children map[string]*ModuleTree
}

// NewModuleTree builds the namespace tree for proj.
func NewModuleTree(proj Project) *ModuleTree {
	root := &ModuleTree{children: make(map[string]*ModuleTree)}

	for _, module := range proj.Modules {
		node := root
		for _, name := range module.Path {
			child, ok := node.children[name]
			if !ok {
				child = &ModuleTree{name: name, children: make(map[string]*ModuleTree)}
				node.children[name] = child
				node.order = append(node.order, name)
			}
			node = child
		}

		id := module.ID
		node.id = &id
		node.types = module.Types
	}

	return root
}

// ID returns the ModuleID attached at this node, if any module resolved
// to exactly this path.
func (t *ModuleTree) ID() (ModuleID, bool) {
	if t.id == nil {
		return 0, false
	}
	return *t.id, true
}

// Name returns this node's own path component (empty for the root).
func (t *ModuleTree) Name() string {
	return t.name
}

// Types returns the user types declared by the module at this exact path.
func (t *ModuleTree) Types() []UserType {
	return t.types
}

// Children returns this node's child namespaces, in first-seen order.
func (t *ModuleTree) Children() []*ModuleTree {
	out := make([]*ModuleTree, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.children[name])
	}
	return out
}

// IsRoot reports whether this node is the tree's root (empty path).
func (t *ModuleTree) IsRoot() bool {
	return t.name == ""
}

// IsEmpty reports whether this node holds no user types: either no module
// resolved to exactly this path, or the module there declares none.
func (t *ModuleTree) IsEmpty() bool {
	return len(t.types) == 0
}
