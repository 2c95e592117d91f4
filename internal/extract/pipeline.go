package extract

import (
	"sort"

	"github.com/phobologic/docmap/internal/doc"
)

// Organize merges declarations gathered across translation units:
// deduplicate by USR, sort by the (file, line, column) total order, and
// group by originating file. Input order does not affect the result.
func Organize(decls []*doc.Declaration) *doc.FileMap {
	unique := Dedup(decls)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Before(unique[j])
	})
	return doc.NewFileMap(unique)
}

// Dedup collapses declarations that share a USR down to one representative.
// Duplicates are interchangeable: the same entity seen from several
// translation units carries the same documentation. Declarations without a
// USR all collapse into a single representative as well.
func Dedup(decls []*doc.Declaration) []*doc.Declaration {
	seen := make(map[string]struct{}, len(decls))
	var unique []*doc.Declaration
	for _, d := range decls {
		if _, dup := seen[d.USR]; dup {
			continue
		}
		seen[d.USR] = struct{}{}
		unique = append(unique, d)
	}
	return unique
}
