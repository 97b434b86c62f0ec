package projector

import "os"

// SourceView is the load/focus seam the position projector drives
// (spec.md §6; the real implementation lives outside the core).
type SourceView interface {
	LoadFile(path string) error
	FocusLine(line int)
}

// Position tracks the currently displayed file and its on-disk mtime, so
// reloads are skipped unless the path or mtime changed (spec.md §4.4
// "Source position").
type Position struct {
	File  string
	Line  int
	mtime int64
}

// Update applies a new "file:line" location (as parsed from the selected
// stack frame) to view, reloading the file only if the path changed or
// its on-disk mtime changed.
func (p *Position) Update(view SourceView, location string) error {
	file, line, ok := splitFileLine(location)
	if !ok {
		return nil
	}
	mtime := statMtime(file)

	reload := file != p.File || mtime != p.mtime
	if reload {
		if err := view.LoadFile(file); err != nil {
			return err
		}
	}
	p.File = file
	p.Line = line
	p.mtime = mtime
	view.FocusLine(line)
	return nil
}

func statMtime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
