package views

import (
	"fmt"

	"github.com/spf13/afero"

	"nearshare/internal/domain"
	"nearshare/internal/files"
)

// FileRenderer handles rendering of file rows
type FileRenderer struct {
	styles *Styles
	fs     afero.Fs
}

// NewFileRenderer creates a new file renderer reading sizes from fs
func NewFileRenderer(styles *Styles, fs afero.Fs) *FileRenderer {
	return &FileRenderer{styles: styles, fs: fs}
}

// RenderFile renders a file row as "[x] name  size".
// The size is read from the file on every render, so a file that changed or
// vanished since it was added shows its current state.
func (r *FileRenderer) RenderFile(ref domain.FileRef, selected, isCursor bool, width int) string {
	box := "[ ]"
	if selected {
		box = r.styles.Checked.Render("[x]")
	}

	size := files.DisplaySize(r.fs, ref)
	sizeText := files.HumanSize(size)
	if size == files.UnknownSize {
		sizeText = r.styles.StatusError.Render(sizeText)
	} else {
		sizeText = r.styles.Dim.Render(sizeText)
	}

	line := fmt.Sprintf("%s %s  %s", box, files.Name(ref), sizeText)
	return fitRow(line, width, isCursor, r.styles)
}
