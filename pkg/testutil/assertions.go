package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// ReadFile returns the content of root/rel, failing the test when unreadable
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// FileExists reports whether path is a regular file
func FileExists(t *testing.T, path string) bool {
	t.Helper()
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path is a directory
func DirExists(t *testing.T, path string) bool {
	t.Helper()
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

// AssertFileContent checks that root/rel holds exactly want
func AssertFileContent(t *testing.T, root, rel, want string, msgAndArgs ...interface{}) {
	t.Helper()
	if got := ReadFile(t, root, rel); got != want {
		t.Errorf("%sContent of %s = %q, want %q", formatMessage(msgAndArgs...), rel, got, want)
	}
}

// AssertFileExists checks that a file exists.
func AssertFileExists(t *testing.T, path string, msgAndArgs ...interface{}) {
	t.Helper()
	if !FileExists(t, path) {
		t.Errorf("%sFile does not exist: %s", formatMessage(msgAndArgs...), path)
	}
}

// AssertDirExists checks that a directory exists.
func AssertDirExists(t *testing.T, path string, msgAndArgs ...interface{}) {
	t.Helper()
	if !DirExists(t, path) {
		t.Errorf("%sDirectory does not exist: %s", formatMessage(msgAndArgs...), path)
	}
}

// AssertNotExists checks that nothing exists at path.
func AssertNotExists(t *testing.T, path string, msgAndArgs ...interface{}) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("%sExpected %s to not exist (err=%v)", formatMessage(msgAndArgs...), path, err)
	}
}

// AssertEmptyDir checks that dir exists and has no entries.
func AssertEmptyDir(t *testing.T, dir string, msgAndArgs ...interface{}) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	if len(entries) > 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("%sExpected %s to be empty, found %v", formatMessage(msgAndArgs...), dir, names)
	}
}

func formatMessage(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...) + ": "
	}
	return fmt.Sprint(msgAndArgs...) + ": "
}
