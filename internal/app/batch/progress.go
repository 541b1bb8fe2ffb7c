package batch

import (
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress wraps one mpb bar counting files. A disabled Progress is a no-op,
// used when stderr is not a terminal or under tests.
type Progress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	enabled   bool
}

// NewProgress creates a bar over total files, or a no-op when disabled.
func NewProgress(total int, enabled bool, writer io.Writer) *Progress {
	if !enabled || total == 0 {
		return &Progress{}
	}
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	bar := container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("transcribing ", decor.WC{C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.0f", decor.WCSyncSpace),
		),
	)
	return &Progress{container: container, bar: bar, enabled: true}
}

// Increment advances the bar by one file, completed or failed.
func (p *Progress) Increment() {
	if p.enabled {
		p.bar.Increment()
	}
}

// Wait flushes and stops the bar rendering.
func (p *Progress) Wait() {
	if p.enabled {
		p.bar.Abort(false)
		p.container.Wait()
	}
}

// IsTTY reports whether writer is a character device.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
