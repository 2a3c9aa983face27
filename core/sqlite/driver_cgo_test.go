//go:build cgo_sqlite

package sqlite

import (
	"strings"
	"testing"

	sqliteexternal "github.com/FocuswithJustin/wikiwsd/contrib/sqlite-external"
)

func TestCGODriverInfo(t *testing.T) {
	info := GetInfo()
	if info.DriverName != sqliteexternal.DriverName || info.DriverType != sqliteexternal.DriverType {
		t.Errorf("GetInfo() = %+v, want driver %s (%s)", info, sqliteexternal.DriverName, sqliteexternal.DriverType)
	}
	if !strings.HasPrefix(info.Package, sqliteexternal.DriverPackage) {
		t.Errorf("Package = %q, want prefix %q", info.Package, sqliteexternal.DriverPackage)
	}
}
