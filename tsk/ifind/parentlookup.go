package ifind

import (
	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/errors"
)

// FindByParent reports every unallocated metadata entry that retains a
// parent-name record pointing to parent (spec.md §4.4.2), ground-truthed
// against the teacher's tsk_fs_ifind_par/ifind_par_act. It is NTFS-specific
// because parent-name records (§3's ParentNameRecord) are an NTFS-family
// concept; drivers from other families simply report none and this
// produces an empty result, not an error.
//
// For each unallocated entry with a matching parent-name record, one
// ParentMatch is emitted per $DATA/$IDXROOT attribute present; an entry
// with neither emits a single attribute-less match. flags does not change
// the result: FlagParLong selects the caller's own long/short rendering,
// and this package does no output formatting itself (spec.md §1 keeps
// rendering out of scope).
func FindByParent(drv tsk.Driver, parent tsk.MetaAddr, flags Flag) ([]ParentMatch, error) {
	if drv == nil {
		return nil, errors.ErrArg.WithMessage("ifind.FindByParent: nil driver")
	}

	var matches []ParentMatch

	err := drv.InodeWalk(drv.FirstInum(), drv.LastInum(), tsk.MetaFlagUnalloc,
		func(file *tsk.File) (tsk.WalkControl, error) {
			for _, pn := range file.Meta.ParentNames {
				if pn.ParentAddr != parent {
					continue
				}
				matches = append(matches, matchesForEntry(file, pn.Name)...)
			}
			return tsk.WalkContinue, nil
		})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// matchesForEntry emits one ParentMatch per $DATA/$IDXROOT attribute on
// file, or a single attribute-less match if it has neither.
func matchesForEntry(file *tsk.File, name string) []ParentMatch {
	var out []ParentMatch
	for _, attr := range file.Meta.Attrs {
		if attr.Type == NTFSAttrTypeData || attr.Type == NTFSAttrTypeIdxRoot {
			out = append(out, ParentMatch{
				Addr:     uint64(file.Meta.Addr),
				Name:     name,
				AttrType: attr.Type,
				HasAttr:  true,
			})
		}
	}
	if len(out) == 0 {
		out = append(out, ParentMatch{
			Addr: uint64(file.Meta.Addr),
			Name: name,
		})
	}
	return out
}
