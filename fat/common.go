// go-common local proxy functions

package fat

import (
	"github.com/rstms/fatfs"
	"github.com/rstms/go-common"
)

// Fatal annotates foreign errors; file system errors are returned as is
// so callers can match them with errors.Is.
func Fatal(err error) error {
	if fatfs.IsFSError(err) {
		return err
	}
	return common.Fatal(err)
}

func Fatalf(format string, args ...interface{}) error {
	return common.Fatalf(format, args...)
}
