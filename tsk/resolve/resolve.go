// Package resolve implements the filesystem-agnostic path resolver
// (SPEC_FULL.md §4.3): a UTF-8, '/'-separated path is walked down a
// tsk.Driver's directory tree to a metadata address, using whatever
// per-family comparison rules the driver's tsk.FSFeatures reports.
package resolve

import (
	"strings"

	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/errors"
)

// Resolve walks path from drv's root directory to the metadata address it
// names. It returns (addr, name, nil) on success, (0, nil,
// errors.ErrNotFound) if the path doesn't exist, and any other non-nil
// error for I/O or corruption failures encountered along the way — the two
// failure modes are never conflated (spec.md §4.3/§7).
func Resolve(drv tsk.Driver, path string) (tsk.MetaAddr, *tsk.DirectoryEntry, error) {
	if drv == nil {
		return 0, nil, errors.ErrArg.WithMessage("resolve.Resolve: nil driver")
	}

	tokens := tokenize(path)
	if len(tokens) == 0 {
		root := drv.RootInum()
		return root, &tsk.DirectoryEntry{
			Name:  "",
			Addr:  root,
			Type:  tsk.TypeDirectory,
			Alloc: tsk.Allocated,
		}, nil
	}

	feat := drv.Features()
	current := drv.RootInum()

	for i, tok := range tokens {
		name, attr := splitAttribute(tok, feat.SupportsAlternateStreams())

		dir, err := drv.DirOpenMeta(current)
		if err != nil {
			return 0, nil, err
		}

		entry, found, err := matchEntry(drv, dir, name, attr, feat)
		if err != nil {
			return 0, nil, err
		}
		if !found {
			return 0, nil, errors.ErrNotFound
		}

		isLast := i == len(tokens)-1
		if isLast {
			result := entry
			return entry.Addr, &result, nil
		}

		// Intermediate segment: must materialize and must be a directory
		// (spec.md §4.3 "intermediate-segment checks").
		meta, err := drv.FileOpenMeta(entry.Addr)
		if err != nil {
			return 0, nil, errors.ErrNotFound
		}
		if meta.Meta.Type != tsk.TypeDirectory {
			return 0, nil, errors.ErrNotFound
		}

		current = entry.Addr
	}

	// Unreachable: the loop always returns on its last iteration.
	return 0, nil, errors.ErrNotFound
}

// tokenize splits path on '/' without mutating any caller-owned buffer
// (Design Note 9.4 — no strtok-style destructive tokenization), dropping
// empty segments so that both "" and "/" produce zero tokens and a leading
// or trailing '/' is harmless.
func tokenize(path string) []string {
	raw := strings.Split(path, "/")
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// splitAttribute separates a path segment's optional ":attribute_name"
// suffix (NTFS-family only) at the first ':'.
func splitAttribute(token string, supportsStreams bool) (name string, attr string) {
	if !supportsStreams {
		return token, ""
	}
	if idx := strings.IndexByte(token, ':'); idx >= 0 {
		return token[:idx], token[idx+1:]
	}
	return token, ""
}

// matchEntry searches dir's entries for one matching name under feat's
// comparison rules (spec.md §4.3 table), applying attribute-qualifier
// semantics when attr is non-empty. The first matching entry in directory
// order wins ties.
func matchEntry(
	drv tsk.Driver,
	dir *tsk.Directory,
	name string,
	attr string,
	feat tsk.FSFeatures,
) (tsk.DirectoryEntry, bool, error) {
	for i := 0; i < dir.Size(); i++ {
		entry := dir.Get(i)

		if !namesMatch(entry, name, feat) {
			continue
		}

		if attr == "" {
			return entry, true, nil
		}

		// NTFS-family alternate-stream syntax: a segment with an attribute
		// qualifier that matches a directory entry, but none of that
		// entry's attributes has the requested name, resolves to
		// not_found immediately — spec.md §4.3 is explicit this must not
		// fall through to other siblings, even though that can shadow a
		// sibling with the same case-folded name and a different
		// attribute set. Preserved as specified; see SPEC_FULL.md's Open
		// Questions.
		file, err := drv.FileOpenMeta(entry.Addr)
		if err != nil {
			return tsk.DirectoryEntry{}, false, err
		}
		for _, a := range file.Meta.Attrs {
			if strings.EqualFold(a.Name, attr) {
				return entry, true, nil
			}
		}
		return tsk.DirectoryEntry{}, false, nil
	}
	return tsk.DirectoryEntry{}, false, nil
}

// namesMatch applies spec.md §4.3's per-family comparison rule: exact
// comparison for case-sensitive families, case-folded (and short-name
// fallback, when the family uses them) otherwise.
func namesMatch(entry tsk.DirectoryEntry, name string, feat tsk.FSFeatures) bool {
	if feat.CaseSensitive() {
		return entry.Name == name
	}

	if strings.EqualFold(entry.Name, name) {
		return true
	}
	if feat.UsesShortNames() && entry.ShortName != "" {
		return strings.EqualFold(entry.ShortName, name)
	}
	return false
}
