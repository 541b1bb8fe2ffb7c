package batch

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	apperrors "video-transcriber/internal/app/errors"
	"video-transcriber/internal/app/model"
)

// FileFailure records one file the pipeline could not finish.
type FileFailure struct {
	Media   model.MediaFile
	Kind    apperrors.Kind
	Message string
}

// Report accumulates per-file outcomes across one batch. It is always
// finalized, even after partial failure, and is what the CLI surfaces.
type Report struct {
	Succeeded int
	Failed    int
	Skipped   int
	Failures  []FileFailure
}

func (r *Report) recordSuccess() {
	r.Succeeded++
}

func (r *Report) recordFailure(file model.MediaFile, err error) {
	r.Failed++
	r.Failures = append(r.Failures, FileFailure{
		Media:   file,
		Kind:    apperrors.KindOf(err),
		Message: err.Error(),
	})
}

func (r *Report) recordSkipped(n int) {
	r.Skipped += n
}

// Total is the number of files the batch accounted for.
func (r *Report) Total() int {
	return r.Succeeded + r.Failed + r.Skipped
}

// Clean reports whether every processed file succeeded.
func (r *Report) Clean() bool {
	return r.Failed == 0 && r.Skipped == 0
}

// Summary renders the end-of-run table.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "processed %d file(s): %d succeeded, %d failed, %d skipped\n",
		r.Total(), r.Succeeded, r.Failed, r.Skipped)

	if len(r.Failures) > 0 {
		b.WriteString("failures:\n")
		lines := lo.Map(r.Failures, func(f FileFailure, _ int) string {
			return fmt.Sprintf("  %-30s %-20s %s", f.Media.Base+f.Media.Ext, f.Kind, f.Message)
		})
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteByte('\n')
	}
	return b.String()
}
