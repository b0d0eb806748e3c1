package ui

import (
	"os"
	"path"
	"time"

	"github.com/epilande/go-devicons"
)

// iconFileInfo feeds a bare name to devicons, which only needs the name
// and the directory bit.
type iconFileInfo struct {
	name  string
	isDir bool
}

func (i iconFileInfo) Name() string { return i.name }

func (i iconFileInfo) Size() int64 { return 0 }

func (i iconFileInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0o755
	}
	return 0
}

func (i iconFileInfo) ModTime() time.Time { return time.Time{} }

func (i iconFileInfo) IsDir() bool { return i.isDir }

func (i iconFileInfo) Sys() any { return nil }

// FileIcon returns the nerd-font glyph for a repository path.
func FileIcon(p string) string {
	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return ""
	}
	return devicons.IconForInfo(iconFileInfo{name: name}).Icon
}

func iconWithSpace(icon string) string {
	if icon == "" {
		return ""
	}
	return icon + " "
}
