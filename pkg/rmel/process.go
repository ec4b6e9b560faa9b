package rmel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/jpfielding/dcmrmel.go/pkg/dicom"
)

// DefaultBackupSuffix is appended to the original file name for backups
const DefaultBackupSuffix = ".bak"

// Processor drives one run: discover files, back each up, apply the
// removal passes and write the mutated dataset back in place. Files are
// processed strictly one at a time.
type Processor struct {
	Filter       Filter
	NoBackup     bool
	BackupSuffix string    // defaults to DefaultBackupSuffix
	Progress     io.Writer // defaults to os.Stdout
}

// Result summarizes a run
type Result struct {
	Processed int // files mutated and rewritten
	Skipped   int // DICOMDIR index files left untouched
}

// Run processes every DICOM file under path. The first error aborts the
// whole run; there is no per-file isolation or retry.
func (p *Processor) Run(ctx context.Context, path string) (Result, error) {
	files, err := Discover(path)
	if err != nil {
		return Result{}, err
	}

	var res Result
	msg := fmt.Sprintf("* removing tags from %d files", len(files))
	for i, fp := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.processOne(ctx, fp, &res); err != nil {
			return res, err
		}
		p.progress(i+1, len(files), msg)
	}
	return res, nil
}

func (p *Processor) processOne(ctx context.Context, path string, res *Result) error {
	f, err := dicom.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	slog.DebugContext(ctx, "processing",
		"path", path,
		"syntax", f.TransferSyntax().Name(),
		"encapsulated", f.TransferSyntax().IsEncapsulated(),
	)

	// DICOMDIR file-set indexes are never backed up, mutated or rewritten
	if f.IsDirectoryIndex() {
		slog.DebugContext(ctx, "skipping DICOMDIR index", "path", path)
		res.Skipped++
		return nil
	}

	// The backup must land before the original is touched; a failed copy
	// aborts the run rather than mutating an unbacked-up file.
	if !p.NoBackup {
		if err := copyFile(path, path+p.suffix()); err != nil {
			return fmt.Errorf("backing up %s: %w", path, err)
		}
	}

	p.Filter.Apply(f)

	if err := dicom.WriteFile(path, f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	res.Processed++
	return nil
}

func (p *Processor) suffix() string {
	if p.BackupSuffix != "" {
		return p.BackupSuffix
	}
	return DefaultBackupSuffix
}

// progress prints percentage progress after each file, carriage-returned
// until the final file completes
func (p *Processor) progress(count, total int, msg string) {
	w := p.Progress
	if w == nil {
		w = os.Stdout
	}
	pct := int(math.Round(100 * float64(count) / float64(total)))
	if count == total {
		fmt.Fprintf(w, "%s [%3d%%]\n", msg, pct)
		return
	}
	fmt.Fprintf(w, "%s [%3d%%]\r", msg, pct)
}

// copyFile copies src to dst byte-for-byte, verifying the copy reached
// stable storage before returning
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
