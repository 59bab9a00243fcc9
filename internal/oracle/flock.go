package oracle

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// tryLockExclusive attempts a non-blocking exclusive advisory lock on f.
// Returns false when another process holds the lock.
func tryLockExclusive(f *os.File) (bool, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if err == unix.EWOULDBLOCK {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeOracleLockFailed, "flock failed").
		WithDetail(f.Name())
}

// unlock releases an advisory lock held on f.  Errors are ignored; closing
// the descriptor releases the lock regardless.
func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

//Personal.AI order the ending
