package vs

import (
	"fmt"

	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/image"
)

// opener is the shape every scheme-specific probe implements: read the
// minimum needed to validate a magic number/checksum at offset, and either
// return a populated VolumeSystem or nil (never both an error worth keeping
// and a nil result — per spec.md §4.2, transient errors between attempts are
// discarded, only the final outcome is reported).
type opener func(img image.Image, offset int64) (*VolumeSystem, error)

// openers maps each explicit Type to its opener. Autodetection does not use
// this map; detect calls the openers directly in the fixed order from
// spec.md §4.2: DOS, BSD, GPT, Sun, Mac.
var openers = map[Type]opener{
	DOS: openDOS,
	BSD: openBSD,
	GPT: openGPT,
	Sun: openSun,
	Mac: openMac,
}

// Open opens a volume system at offset bytes into img. With an explicit
// Type it dispatches straight to that scheme's opener. With Detect it runs
// the autodetection algorithm below.
func Open(img image.Image, offset int64, t Type) (*VolumeSystem, error) {
	if img == nil {
		return nil, errors.ErrArg.WithMessage("vs.Open: nil image")
	}

	if t == Detect {
		return detect(img, offset)
	}

	open, ok := openers[t]
	if !ok {
		return nil, errors.ErrVSUnsupportedType.WithMessage(t.String())
	}
	return open(img, offset)
}

// detect implements spec.md §4.2's fixed-order autodetection:
//
//  1. DOS is tried tolerant of overlap with BSD boot code.
//  2. BSD, if it also succeeds, unconditionally overrides DOS — BSD
//     disklabels carry a DOS-compatible magic in sector 0, so a DOS match
//     alone is not evidence against BSD. This is the single deliberate
//     asymmetry (spec.md rule 2); the commented-out alternative in the
//     teacher's mm_open.c, treating DOS+BSD success as ambiguous, is
//     preserved as not taken.
//  3. GPT, Sun, and Mac replace a DOS-only match (a DOS match that BSD did
//     not override) and are otherwise exclusive: a second success among
//     this group, or a success after BSD, fails closed with ErrVSUnknownType
//     naming both contenders, after closing neither (VolumeSystem values
//     carry no open resources to release).
//  4. No match at all is ErrVSUnknownType with no further detail.
//
// Errors from unsuccessful probes are discarded between attempts, matching
// the teacher's tsk_error_reset() between openers.
func detect(img image.Image, offset int64) (*VolumeSystem, error) {
	var result *VolumeSystem
	var resultName string

	if found, err := openDOS(img, offset); err == nil && found != nil {
		result = found
		resultName = "DOS"
	}

	if found, err := openBSD(img, offset); err == nil && found != nil {
		// BSD always overrides a DOS match; it is never a conflict.
		result = found
		resultName = "BSD"
	}

	exclusive := []struct {
		name string
		open opener
	}{
		{"GPT", openGPT},
		{"Sun", openSun},
		{"Mac", openMac},
	}

	for _, candidate := range exclusive {
		found, err := candidate.open(img, offset)
		if err != nil || found == nil {
			continue
		}
		if result == nil || resultName == "DOS" {
			result = found
			resultName = candidate.name
			continue
		}
		return nil, errors.ErrVSUnknownType.WithMessage(
			fmt.Sprintf("%s or %s at offset %d", candidate.name, resultName, offset),
		)
	}

	if result == nil {
		return nil, errors.ErrVSUnknownType
	}
	return result, nil
}
