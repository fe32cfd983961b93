package tests

import (
	"os"
	"testing"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/fs"
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	core.TemplatesFS = appfs.FS

	os.Exit(m.Run())
}
