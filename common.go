// go-common local proxy functions

package fatfs

import (
	"github.com/rstms/go-common"
)

func Fatal(err error) error {
	if IsFSError(err) {
		return err
	}
	return common.Fatal(err)
}

func Fatalf(format string, args ...interface{}) error {
	return common.Fatalf(format, args...)
}
