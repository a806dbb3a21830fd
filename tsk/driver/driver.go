// Package driver ties an image, an optional volume system, and a
// filesystem driver into one read-only handle, the way the teacher's
// disko-derived BaseDriver tied a mount implementation and its working
// directory together — but with every write operation (OpenFile, Create,
// WriteFile, Mkdir, Remove, Truncate, ...) removed, since nothing under
// this module writes to a forensic image.
package driver

import (
	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/ifind"
	"github.com/sleuthgo/tsk/image"
	"github.com/sleuthgo/tsk/resolve"
	"github.com/sleuthgo/tsk/vs"
)

// Session is a read-only handle over one filesystem, optionally situated
// inside one partition of a detected volume system.
type Session struct {
	Image        image.Image
	VolumeSystem *vs.VolumeSystem // nil for an unpartitioned image (e.g. a bare ISO9660 image)
	FS           tsk.Driver
}

// New ties img, an already-opened volume system (nil if the image has none),
// and an already-opened filesystem driver together into one Session.
func New(img image.Image, volumeSystem *vs.VolumeSystem, fs tsk.Driver) (*Session, error) {
	if img == nil {
		return nil, errors.ErrArg.WithMessage("driver.New: nil image")
	}
	if fs == nil {
		return nil, errors.ErrArg.WithMessage("driver.New: nil filesystem driver")
	}
	return &Session{Image: img, VolumeSystem: volumeSystem, FS: fs}, nil
}

// Partitions returns the volume system's partition list, or nil if this
// session has no volume system (the filesystem occupies the whole image).
func (s *Session) Partitions() []vs.Partition {
	if s.VolumeSystem == nil {
		return nil
	}
	return s.VolumeSystem.Partitions
}

// Resolve walks path to a metadata address, exactly as tsk/resolve.Resolve
// does against s.FS.
func (s *Session) Resolve(path string) (tsk.MetaAddr, *tsk.DirectoryEntry, error) {
	return resolve.Resolve(s.FS, path)
}

// Stat resolves path and opens its metadata entry.
func (s *Session) Stat(path string) (*tsk.File, error) {
	addr, _, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	return s.FS.FileOpenMeta(addr)
}

// ReadDir resolves path and opens it as a directory listing.
func (s *Session) ReadDir(path string) (*tsk.Directory, error) {
	addr, _, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	return s.FS.DirOpenMeta(addr)
}

// FindByBlock reports which metadata entries, if any, claim block.
func (s *Session) FindByBlock(block tsk.BlockAddr, flags ifind.Flag) (ifind.BlockResult, error) {
	return ifind.FindByBlock(s.FS, block, flags)
}

// FindByParent reports unallocated entries naming parent as their parent
// directory.
func (s *Session) FindByParent(parent tsk.MetaAddr, flags ifind.Flag) ([]ifind.ParentMatch, error) {
	return ifind.FindByParent(s.FS, parent, flags)
}

// Close releases the underlying filesystem driver.
func (s *Session) Close() error {
	return s.FS.Close()
}
