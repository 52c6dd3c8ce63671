package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() MapFileSystem {
	return MapFileSystem{
		"root.phenix": `
			import * from "nested.phenix"

			struct Envelope {
				header: Header,
				body: string,
			}
		`,
		"nested.phenix": `
			struct Header {
				id: uint,
			}
		`,
	}
}

func TestDefsAndScope(t *testing.T) {
	database := NewDatabase(testFS())
	root := database.InternFile("root.phenix")

	defs, err := database.Defs(root)
	require.NoError(t, err)
	assert.Contains(t, defs, "Envelope")
	assert.NotContains(t, defs, "Header")

	scope, err := database.Scope(root)
	require.NoError(t, err)
	assert.Contains(t, scope, "Envelope")
	assert.Contains(t, scope, "Header")
}

func TestReachableIncludesImportsFirstSeen(t *testing.T) {
	database := NewDatabase(testFS())
	root := database.InternFile("root.phenix")

	reachable, err := database.Reachable(root)
	require.NoError(t, err)
	require.Len(t, reachable, 2)
	assert.Equal(t, root, reachable[0])

	nestedID := database.InternFile("nested.phenix")
	assert.Equal(t, nestedID, reachable[1])
}

func TestCyclicImportsDoNotInfiniteLoop(t *testing.T) {
	fs := MapFileSystem{
		"a.phenix": `import * from "b.phenix"
			struct A { x: u8 }`,
		"b.phenix": `import * from "a.phenix"
			struct B { y: u8 }`,
	}

	database := NewDatabase(fs)
	a := database.InternFile("a.phenix")

	reachable, err := database.Reachable(a)
	require.NoError(t, err)
	assert.Len(t, reachable, 2)

	scope, err := database.Scope(a)
	require.NoError(t, err)
	assert.Contains(t, scope, "A")
	assert.Contains(t, scope, "B")
}

func TestInvalidateDropsCaches(t *testing.T) {
	fs := MapFileSystem{"root.phenix": `struct A { x: u8 }`}
	database := NewDatabase(fs)
	root := database.InternFile("root.phenix")

	defs, err := database.Defs(root)
	require.NoError(t, err)
	assert.Contains(t, defs, "A")

	fs["root.phenix"] = `struct B { x: u8 }`
	database.Invalidate()

	defs, err = database.Defs(root)
	require.NoError(t, err)
	assert.Contains(t, defs, "B")
	assert.NotContains(t, defs, "A")
}

func TestTraceQueriesRecordsDependencies(t *testing.T) {
	database := NewDatabase(testFS())
	database.SetTraceQueries(true)
	root := database.InternFile("root.phenix")

	_, err := database.Scope(root)
	require.NoError(t, err)

	graph := database.Dump()
	assert.NotEmpty(t, graph)
}

func TestImportItemByNameIsStableAcrossRecompute(t *testing.T) {
	database := NewDatabase(testFS())
	root := database.InternFile("root.phenix")

	scope1, err := database.Scope(root)
	require.NoError(t, err)
	id1 := scope1["Envelope"]

	database.Invalidate()

	scope2, err := database.Scope(root)
	require.NoError(t, err)
	id2 := scope2["Envelope"]

	assert.Equal(t, id1, id2)
}
