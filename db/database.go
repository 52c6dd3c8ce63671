package db

import (
	"fmt"

	"github.com/kungfusheep/phenix/schema"
)

// FileSystem is the read side of the database's vfs dependency: anything
// that can turn a path into source text. os.ReadFile satisfies it once
// wrapped; tests use an in-memory map.
type FileSystem interface {
	ReadFile(path string) (string, error)
}

// Diagnostic is a non-fatal problem surfaced alongside a successful query
// result — currently only unresolved field types (§7's Open Question,
// resolved per SPEC_FULL.md §4: surface a diagnostic in addition to
// dropping the item, rather than instead of).
type Diagnostic struct {
	File    string
	Message string
}

// Database is the incremental def database (§4.5). Queries are memoized by
// FileID; Invalidate drops every cache entry that could have depended on a
// changed file, so the next query recomputes from the ground up. This is
// the explicit-dependency-tracking style §9 calls for in place of a
// borrowed memoization library: conservative (invalidation is whole-table,
// not surgical) but easy to get right, matching the compiler's "each
// compile is a complete pass" resource model (§5).
type Database struct {
	fs FileSystem

	trace    bool
	traceLog map[string][]string // query call -> queries it consulted

	filePaths []string
	fileIDs   map[string]FileID

	itemLocs []itemLoc
	itemIDs  map[string]ItemID

	readCache      map[FileID]string
	parseCache     map[FileID]schema.Parse
	defsCache      map[FileID]map[string]ItemID
	importsCache   map[FileID]map[string]ItemID
	scopeCache     map[FileID]map[string]ItemID
	reachableCache map[FileID][]FileID

	diagnostics []Diagnostic
}

// NewDatabase returns an empty Database reading source text through fs.
func NewDatabase(fs FileSystem) *Database {
	return &Database{
		fs:      fs,
		fileIDs: make(map[string]FileID),
		itemIDs: make(map[string]ItemID),
	}
}

// SetTraceQueries turns on the --trace-queries debug capability: every
// query call records, by a "query(args)" label, which lower-level query
// calls it made. Dump() renders the recorded graph.
func (d *Database) SetTraceQueries(on bool) {
	d.trace = on
	if on && d.traceLog == nil {
		d.traceLog = make(map[string][]string)
	}
}

func (d *Database) recordDep(caller, callee string) {
	if !d.trace || caller == "" {
		return
	}
	d.traceLog[caller] = append(d.traceLog[caller], callee)
}

// Dump returns the recorded query dependency graph as caller -> callees.
// Empty unless SetTraceQueries(true) was called.
func (d *Database) Dump() map[string][]string {
	return d.traceLog
}

// Diagnostics returns every diagnostic accumulated across all queries run
// so far (currently only unresolved-type diagnostics raised during
// project lowering populate this from outside the package via
// AddDiagnostic).
func (d *Database) Diagnostics() []Diagnostic {
	return d.diagnostics
}

// AddDiagnostic records a diagnostic raised by a downstream consumer (e.g.
// project lowering) against this compile's database.
func (d *Database) AddDiagnostic(diag Diagnostic) {
	d.diagnostics = append(d.diagnostics, diag)
}

// InternFile interns path, returning its stable FileID.
func (d *Database) InternFile(path string) FileID {
	if id, ok := d.fileIDs[path]; ok {
		return id
	}
	id := FileID(len(d.filePaths))
	d.filePaths = append(d.filePaths, path)
	d.fileIDs[path] = id
	return id
}

// LookupFile returns the path a FileID was interned from.
func (d *Database) LookupFile(id FileID) string {
	return d.filePaths[id]
}

func (d *Database) internItem(loc itemLoc) ItemID {
	k := loc.key()
	if id, ok := d.itemIDs[k]; ok {
		return id
	}
	id := ItemID(len(d.itemLocs))
	d.itemLocs = append(d.itemLocs, loc)
	d.itemIDs[k] = id
	return id
}

// LookupItem returns the (file, item) pair an ItemID was interned from.
func (d *Database) LookupItem(id ItemID) (FileID, schema.ItemData) {
	loc := d.itemLocs[id]
	return loc.file, loc.item
}

// Invalidate drops every memoized query result. ApplyChanges (watch.go)
// calls it for a non-empty batch of file changes; the next query then
// recomputes from the file contents.
func (d *Database) Invalidate() {
	d.readCache = nil
	d.parseCache = nil
	d.defsCache = nil
	d.importsCache = nil
	d.scopeCache = nil
	d.reachableCache = nil
	d.diagnostics = nil
}

// Read returns the source text of file, reading through the filesystem on
// first request and caching the result until Invalidate is called.
func (d *Database) Read(file FileID) (string, error) {
	if d.readCache == nil {
		d.readCache = make(map[FileID]string)
	}
	if text, ok := d.readCache[file]; ok {
		return text, nil
	}

	text, err := d.fs.ReadFile(d.filePaths[file])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", d.filePaths[file], err)
	}

	d.readCache[file] = text
	return text, nil
}

// Parse returns the parsed CST and any syntax errors for file.
func (d *Database) Parse(file FileID) (schema.Parse, error) {
	if d.parseCache == nil {
		d.parseCache = make(map[FileID]schema.Parse)
	}
	if parse, ok := d.parseCache[file]; ok {
		return parse, nil
	}

	text, err := d.Read(file)
	if err != nil {
		return schema.Parse{}, err
	}
	d.recordDep(queryLabel("parse", file), queryLabel("read", file))

	parse := schema.ParseSource(text)
	d.parseCache[file] = parse
	return parse, nil
}

// Defs returns the map of locally-defined item names to ItemIDs for file,
// interning each item along the way.
func (d *Database) Defs(file FileID) (map[string]ItemID, error) {
	if d.defsCache == nil {
		d.defsCache = make(map[FileID]map[string]ItemID)
	}
	if defs, ok := d.defsCache[file]; ok {
		return defs, nil
	}

	parse, err := d.Parse(file)
	if err != nil {
		return nil, err
	}
	d.recordDep(queryLabel("defs", file), queryLabel("parse", file))

	root := schema.Lower(parse.Root)
	defs := make(map[string]ItemID, len(root.Items))
	for _, item := range root.Items {
		id := d.internItem(itemLoc{file: file, item: item})
		defs[item.Name()] = id
	}

	d.defsCache[file] = defs
	return defs, nil
}

// Imports returns the map of names reachable via `import` (after alias
// rewriting) for file.
func (d *Database) Imports(file FileID) (map[string]ItemID, error) {
	if d.importsCache == nil {
		d.importsCache = make(map[FileID]map[string]ItemID)
	}
	if imports, ok := d.importsCache[file]; ok {
		return imports, nil
	}

	parse, err := d.Parse(file)
	if err != nil {
		return nil, err
	}
	d.recordDep(queryLabel("imports", file), queryLabel("parse", file))

	root := schema.Lower(parse.Root)
	imports := make(map[string]ItemID)

	for _, imp := range root.Imports {
		importFile := d.InternFile(resolveImportPath(d.filePaths[file], imp.Path))

		importDefs, err := d.Defs(importFile)
		if err != nil {
			// An import of a file that can't be read doesn't fail the
			// whole query; it simply contributes no names, matching §7's
			// "missing items are skipped" stance for parse-layer problems.
			continue
		}
		d.recordDep(queryLabel("imports", file), queryLabel("defs", importFile))

		if imp.Star {
			for name, id := range importDefs {
				imports[name] = id
			}
			continue
		}

		for _, alias := range imp.Aliases {
			if id, ok := importDefs[alias.From]; ok {
				imports[alias.To] = id
			}
		}
	}

	d.importsCache[file] = imports
	return imports, nil
}

// Scope returns a file's full name scope: its imports overlaid by its own
// definitions, with local defs winning on name collision.
func (d *Database) Scope(file FileID) (map[string]ItemID, error) {
	if d.scopeCache == nil {
		d.scopeCache = make(map[FileID]map[string]ItemID)
	}
	if scope, ok := d.scopeCache[file]; ok {
		return scope, nil
	}

	imports, err := d.Imports(file)
	if err != nil {
		return nil, err
	}
	defs, err := d.Defs(file)
	if err != nil {
		return nil, err
	}
	d.recordDep(queryLabel("scope", file), queryLabel("imports", file))
	d.recordDep(queryLabel("scope", file), queryLabel("defs", file))

	scope := make(map[string]ItemID, len(imports)+len(defs))
	for name, id := range imports {
		scope[name] = id
	}
	for name, id := range defs {
		scope[name] = id
	}

	d.scopeCache[file] = scope
	return scope, nil
}

// Reachable returns the transitive closure of root's imports, including
// root itself, in first-seen order. Cyclic imports are tolerated: each
// file's own Defs/Imports/Scope are computed independently of its
// importers, so a cycle just means the same FileID appears once, skipped
// on re-visit.
func (d *Database) Reachable(root FileID) ([]FileID, error) {
	if d.reachableCache == nil {
		d.reachableCache = make(map[FileID][]FileID)
	}
	if reachable, ok := d.reachableCache[root]; ok {
		return reachable, nil
	}

	seen := make(map[FileID]bool)
	var order []FileID

	var visit func(FileID) error
	visit = func(file FileID) error {
		if seen[file] {
			return nil
		}
		seen[file] = true
		order = append(order, file)

		parse, err := d.Parse(file)
		if err != nil {
			return err
		}
		d.recordDep(queryLabel("reachable", root), queryLabel("parse", file))

		lowered := schema.Lower(parse.Root)
		for _, imp := range lowered.Imports {
			importFile := d.InternFile(resolveImportPath(d.filePaths[file], imp.Path))
			if err := visit(importFile); err != nil {
				continue
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}

	d.reachableCache[root] = order
	return order, nil
}

func queryLabel(name string, file FileID) string {
	return fmt.Sprintf("%s(%d)", name, file)
}
