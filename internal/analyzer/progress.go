package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/recreate-run/multimodal-analyzer/internal/logger"
)

type nopProgress struct{}

func (nopProgress) Start(int)            {}
func (nopProgress) Advance(string, bool) {}
func (nopProgress) Finish()              {}

// NopProgress discards progress updates.
func NopProgress() Progress { return nopProgress{} }

// NewProgress reports to w. A terminal gets a single rewritten status line;
// anything else gets one log line per file.
func NewProgress(w io.Writer, label string, log logger.Logger) Progress {
	return &implProgress{
		w:     w,
		label: label,
		tty:   isTerminal(w),
		log:   log,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type implProgress struct {
	mu     sync.Mutex
	w      io.Writer
	label  string
	tty    bool
	log    logger.Logger
	total  int
	done   int
	failed int
	width  int
}

func (p *implProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done, p.failed = total, 0, 0
	if p.tty {
		p.render("")
	}
}

func (p *implProgress) Advance(path string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	status := "ok"
	if !ok {
		p.failed++
		status = "failed"
	}

	if p.tty {
		p.render(status + " " + filepath.Base(path))
		return
	}
	p.log.Info(context.Background(), "%s [%d/%d] %s %s", p.label, p.done, p.total, status, path)
}

func (p *implProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty {
		fmt.Fprintln(p.w)
	}
}

// render rewrites the status line, padding over any longer previous line.
func (p *implProgress) render(detail string) {
	line := fmt.Sprintf("%s [%d/%d]", p.label, p.done, p.total)
	if p.failed > 0 {
		line += fmt.Sprintf(" (%d failed)", p.failed)
	}
	if detail != "" {
		line += " " + detail
	}
	pad := p.width - len(line)
	p.width = len(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(p.w, "\r%s%*s", line, pad, "")
}
