package testhelpers

import (
	"os"
	"path/filepath"
	"runtime"
)

// LoadFixture reads testhelpers/fixtures/<name> regardless of which package
// the test runs from.
func LoadFixture(name string) ([]byte, error) {
	_, file, _, _ := runtime.Caller(0)
	return os.ReadFile(filepath.Join(filepath.Dir(file), "fixtures", name))
}

func MustLoadFixture(name string) string {
	data, err := LoadFixture(name)
	if err != nil {
		panic(err)
	}
	return string(data)
}
