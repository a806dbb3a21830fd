// Package errors defines the three-valued result codes used throughout the
// query layer (walk_rng, arg, read, inode_num, unicode, vs_unktype,
// vs_unsuptype, corrupted, not_found — SPEC_FULL.md §6/§7), in the same
// sentinel-error-that-composes-with-WithMessage idiom the teacher repo used
// for its POSIX errno shim.
package errors

import "fmt"

// TskError is a sentinel error code. Unlike the teacher's errno shim, these
// don't mirror POSIX — they mirror the result taxonomy a forensic query
// layer actually needs.
type TskError string

// ErrWalkRange: a metadata or block address fell outside the valid range for
// the filesystem handle it was used against.
const ErrWalkRange = TskError("address out of range")

// ErrArg: a required argument was nil, empty, or otherwise structurally
// invalid.
const ErrArg = TskError("invalid argument")

// ErrRead: the underlying image reader failed.
const ErrRead = TskError("image read failed")

// ErrInodeNum: an address was syntactically in range but does not name a
// metadata entry that can be materialized.
const ErrInodeNum = TskError("not a valid metadata address")

// ErrUnicode: a name or path component failed UTF-8/encoding conversion.
const ErrUnicode = TskError("encoding conversion failed")

// ErrVSUnknownType: volume-system autodetection found no opener that
// succeeded, or found a disallowed conflict between two openers.
const ErrVSUnknownType = TskError("unknown volume system type")

// ErrVSUnsupportedType: an explicit, named volume-system type was requested
// that this build does not implement an opener for.
const ErrVSUnsupportedType = TskError("unsupported volume system type")

// ErrCorrupted: an on-disk structure (most commonly a directory extent)
// referenced data that doesn't parse, distinct from an I/O failure.
const ErrCorrupted = TskError("corrupted filesystem structure")

// ErrNotFound: a path, name, or attribute does not exist. Distinct from
// ErrRead/ErrCorrupted — this is "the thing legitimately isn't there", not
// "we couldn't tell".
const ErrNotFound = TskError("not found")

func (e TskError) Error() string {
	return string(e)
}

func (e TskError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e,
	}
}

func (e TskError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}
