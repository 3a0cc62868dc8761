package attr

import (
	"time"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/timeutil"
)

// TTL is how long the kernel is told it may cache an attribute block before
// asking again. The mirror is never mutated while mounted, so this exists
// only to bound staleness after an external mutation an operator chose to
// make anyway; 24 hours is long but not infinite.
const TTL = 24 * time.Hour

// ToFuseAttrs narrows Info to what fuseops.InodeAttributes actually
// transports to the kernel. Blocks, Rdev and Blksize have no home in that
// struct (jacobsa/fuse's abstraction, unlike a raw Stat_t, doesn't surface
// them), so they are dropped here rather than earlier, keeping Info itself
// a faithful, testable attribute block.
func (i Info) ToFuseAttrs() fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Size:  i.Size,
		Nlink: i.Nlink,
		Mode:  i.Mode,
		Atime: i.Atime,
		Mtime: i.Mtime,
		Ctime: i.Ctime,
		Uid:   i.Uid,
		Gid:   i.Gid,
	}
}

// Expiration returns the AttributesExpiration value to stamp on a FUSE
// response, TTL past clock's current time. Threading a timeutil.Clock
// through (rather than calling time.Now directly) is what lets tests pin
// the expiration to a known instant, the same way samples/memfs does.
func Expiration(clock timeutil.Clock) time.Time {
	return clock.Now().Add(TTL)
}
