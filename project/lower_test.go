package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungfusheep/phenix/db"
)

func TestResolveModulePathDoesNotSpecialCaseRootFile(t *testing.T) {
	// ResolveModulePath has no knowledge of which file is the root; a file
	// that happens to sit directly in rootDir still gets a normal path.
	// Lower is the one that hard-codes the root file's own path to empty.
	path := ResolveModulePath("/schemas", "/schemas/index.phenix")
	assert.Equal(t, ModulePath{"index"}, path)
}

func TestResolveModulePathNested(t *testing.T) {
	path := ResolveModulePath("/schemas", "/schemas/nested/types.phenix")
	assert.Equal(t, ModulePath{"nested", "types"}, path)
}

func TestResolveModulePathNormalizesComponent(t *testing.T) {
	path := ResolveModulePath("/schemas", "/schemas/123-weird!!name.phenix")
	assert.Equal(t, ModulePath{"weird_name"}, path)
}

func TestResolveModulePathAncestorEscapeIsExternal(t *testing.T) {
	path := ResolveModulePath("/schemas/project", "/schemas/shared.phenix")
	assert.Equal(t, ModulePath{"external"}, path)
}

func TestLowerCrossModuleProject(t *testing.T) {
	fs := db.MapFileSystem{
		"index.phenix": `
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

	database := db.NewDatabase(fs)
	proj, err := Lower(database, "index.phenix")
	require.NoError(t, err)
	require.Len(t, proj.Modules, 2)

	rootModule := proj.Modules[0]
	assert.Equal(t, ModulePath(nil), rootModule.Path)
	require.Len(t, rootModule.Types, 1)
	assert.Equal(t, "Envelope", rootModule.Types[0].Name())

	envelope := rootModule.Types[0].Struct
	require.Len(t, envelope.Fields, 2)
	assert.True(t, envelope.Fields[0].Type.ID.IsUser)

	nestedModule := proj.Modules[1]
	assert.Equal(t, ModulePath{"nested"}, nestedModule.Path)
	require.Len(t, nestedModule.Types, 1)
	assert.Equal(t, "Header", nestedModule.Types[0].Name())

	assert.Empty(t, database.Diagnostics())
}

func TestLowerDropsItemWithUnresolvedFieldAndRecordsDiagnostic(t *testing.T) {
	fs := db.MapFileSystem{
		"index.phenix": `
			struct Bad {
				x: DoesNotExist,
			}

			struct Good {
				y: u8,
			}
		`,
	}

	database := db.NewDatabase(fs)
	proj, err := Lower(database, "index.phenix")
	require.NoError(t, err)
	require.Len(t, proj.Modules, 1)

	var names []string
	for _, ty := range proj.Modules[0].Types {
		names = append(names, ty.Name())
	}
	assert.NotContains(t, names, "Bad")
	assert.Contains(t, names, "Good")

	require.Len(t, database.Diagnostics(), 1)
	assert.Contains(t, database.Diagnostics()[0].Message, "Bad")
}

func TestModuleTreeNesting(t *testing.T) {
	fs := db.MapFileSystem{
		"index.phenix": `import * from "a/b.phenix"` + "\nstruct Root { x: u8 }",
		"a/b.phenix":   `struct Nested { y: u8 }`,
	}

	database := db.NewDatabase(fs)
	proj, err := Lower(database, "index.phenix")
	require.NoError(t, err)

	tree := NewModuleTree(proj)
	require.True(t, tree.IsRoot())

	children := tree.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "a", children[0].Name())

	grandchildren := children[0].Children()
	require.Len(t, grandchildren, 1)
	assert.Equal(t, "b", grandchildren[0].Name())
	require.Len(t, grandchildren[0].Types(), 1)
	assert.Equal(t, "Nested", grandchildren[0].Types()[0].Name())
}
