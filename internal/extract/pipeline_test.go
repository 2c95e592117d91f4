package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/docmap/internal/doc"
)

func decl(usr, file string, line, column uint32) *doc.Declaration {
	return &doc.Declaration{
		USR:      usr,
		Location: doc.Location{File: file, Line: line, Column: column},
	}
}

func TestDedupCollapsesEqualUSR(t *testing.T) {
	t.Parallel()

	// the same entity seen from two translation units
	decls := []*doc.Declaration{
		decl("c:@F@add", "math.h", 3, 1),
		decl("c:@F@sub", "math.h", 8, 1),
		decl("c:@F@add", "math.h", 3, 1),
	}

	unique := Dedup(decls)
	assert.Len(t, unique, 2)
}

func TestDedupIsIdempotent(t *testing.T) {
	t.Parallel()

	decls := []*doc.Declaration{
		decl("c:@F@a", "a.h", 1, 1),
		decl("c:@F@a", "a.h", 1, 1),
		decl("c:@F@b", "a.h", 2, 1),
	}

	once := Dedup(decls)
	twice := Dedup(once)
	assert.Equal(t, once, twice)
}

func TestDedupCollapsesAbsentUSR(t *testing.T) {
	t.Parallel()

	decls := []*doc.Declaration{
		decl("", "a.h", 1, 1),
		decl("", "b.h", 5, 1),
		decl("c:@F@f", "a.h", 3, 1),
	}

	unique := Dedup(decls)
	// all USR-less declarations collapse into a single representative
	assert.Len(t, unique, 2)
}

func TestOrganizeSortsAndGroups(t *testing.T) {
	t.Parallel()

	// interleaved input order across two files
	decls := []*doc.Declaration{
		decl("c:@F@b2", "b.h", 9, 1),
		decl("c:@F@a2", "a.h", 7, 1),
		decl("c:@F@b1", "b.h", 2, 4),
		decl("c:@F@a1", "a.h", 2, 1),
		decl("c:@F@b1col", "b.h", 2, 2),
	}

	fm := Organize(decls)

	require.Equal(t, []string{"a.h", "b.h"}, fm.Files)

	a := fm.ByFile["a.h"]
	require.Len(t, a, 2)
	assert.Equal(t, "c:@F@a1", a[0].USR)
	assert.Equal(t, "c:@F@a2", a[1].USR)

	b := fm.ByFile["b.h"]
	require.Len(t, b, 3)
	assert.Equal(t, "c:@F@b1col", b[0].USR) // line 2 col 2 before col 4
	assert.Equal(t, "c:@F@b1", b[1].USR)
	assert.Equal(t, "c:@F@b2", b[2].USR)
}

func TestOrganizeIsInputOrderIndependent(t *testing.T) {
	t.Parallel()

	forward := []*doc.Declaration{
		decl("c:@F@a", "a.h", 1, 1),
		decl("c:@F@b", "a.h", 2, 1),
		decl("c:@F@c", "b.h", 1, 1),
	}
	backward := []*doc.Declaration{forward[2], forward[1], forward[0]}

	assert.Equal(t, Organize(forward), Organize(backward))
}

func TestOrganizeEveryDeclarationInExactlyOneBucket(t *testing.T) {
	t.Parallel()

	decls := []*doc.Declaration{
		decl("c:@F@a", "a.h", 1, 1),
		decl("c:@F@b", "b.h", 1, 1),
		decl("c:@F@c", "c.h", 1, 1),
		decl("c:@F@d", "a.h", 9, 1),
	}

	fm := Organize(decls)

	total := 0
	for _, file := range fm.Files {
		for _, d := range fm.ByFile[file] {
			assert.Equal(t, file, d.Location.File)
			total++
		}
	}
	assert.Equal(t, len(decls), total)
}

func TestOrganizeStableAtEqualPosition(t *testing.T) {
	t.Parallel()

	// same position, distinct identities: stability preserves input order
	first := decl("c:@F@first", "a.h", 4, 2)
	second := decl("c:@F@second", "a.h", 4, 2)

	fm := Organize([]*doc.Declaration{first, second})

	a := fm.ByFile["a.h"]
	require.Len(t, a, 2)
	assert.Equal(t, "c:@F@first", a[0].USR)
	assert.Equal(t, "c:@F@second", a[1].USR)
}
