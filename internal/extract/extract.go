// Package extract builds declaration records from front-end cursors and
// assembles them into a deduplicated, ordered, file-grouped documentation map.
package extract

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/docmap/internal/comment"
	"github.com/phobologic/docmap/internal/doc"
)

// Cursor identifies one syntactic entity produced by the parsing front end.
// Implementations are pure views over already-parsed sources: none of the
// methods perform I/O or block.
type Cursor interface {
	// IsDeclaration reports whether the cursor represents a declaration
	// site. Non-declarations are excluded from extraction.
	IsDeclaration() bool
	Kind() doc.Kind
	Location() doc.Location
	Name() string
	USR() string
	// Text returns the rendered signature of the declaration.
	Text() string
	// Children returns the cursor's child cursors in source order.
	Children() []Cursor
	// ParsedComment returns the documentation comment attached to the
	// cursor, or the comment.Null sentinel when there is none. Never nil.
	ParsedComment() *comment.Node
}

// Unit is one translation unit's worth of top-level cursors.
type Unit interface {
	Path() string
	Cursors() []Cursor
}

// Build constructs a declaration record from a cursor and its attached
// comment. It yields no value (ok=false) when the cursor is not a
// declaration or carries no documentation comment; this is a normal
// filtering outcome, not an error. Children are built by the same rule,
// recursively, preserving source order.
func Build(c Cursor, obs comment.Observer) (*doc.Declaration, bool) {
	if !c.IsDeclaration() {
		return nil, false
	}
	parsed := c.ParsedComment()
	if parsed.IsNull() {
		return nil, false
	}

	d := &doc.Declaration{
		Kind:      c.Kind(),
		Location:  c.Location(),
		Name:      c.Name(),
		USR:       c.USR(),
		Signature: c.Text(),
	}
	for _, child := range c.Children() {
		if cd, ok := Build(child, obs); ok {
			d.Children = append(d.Children, cd)
		}
	}

	cl := comment.Classify(parsed, obs)
	d.Parameters = cl.Parameters
	d.Discussion = cl.Discussion
	d.ReturnDiscussion = cl.ReturnDiscussion
	return d, true
}

// FromUnit builds declaration records for every documented top-level
// cursor of one unit.
func FromUnit(u Unit, obs comment.Observer) []*doc.Declaration {
	var decls []*doc.Declaration
	for _, c := range u.Cursors() {
		if d, ok := Build(c, obs); ok {
			decls = append(decls, d)
		}
	}
	return decls
}

// FromUnits extracts declarations from every unit, fanning units out across
// GOMAXPROCS goroutines. Units share no mutable state, so per-unit
// extraction is embarrassingly parallel; the observer, if given, must be
// safe for concurrent use.
func FromUnits(ctx context.Context, units []Unit, obs comment.Observer) ([]*doc.Declaration, error) {
	results := make([][]*doc.Declaration, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = FromUnit(u, obs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*doc.Declaration
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
