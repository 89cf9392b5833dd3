// Package share hands exported documents to a platform share facility.
package share

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/memnotes/internal/safefile"
)

// Request describes one file to share.
type Request struct {
	Path        string // file to share
	Filename    string // display name offered to the receiver
	MimeType    string
	DialogTitle string
	UTI         string // uniform type identifier, e.g. com.adobe.pdf
}

// Sharer is a platform share facility.
type Sharer interface {
	// Available reports whether sharing can be attempted in this environment.
	Available(ctx context.Context) bool

	// Share hands the file to the facility and returns once it has accepted
	// or rejected the request.
	Share(ctx context.Context, req Request) error
}

// UTIForMime returns the uniform type identifier for a MIME type.
func UTIForMime(mime string) string {
	switch mime {
	case "application/pdf":
		return "com.adobe.pdf"
	case "text/html":
		return "public.html"
	default:
		return "public.data"
	}
}

// Unavailable is a Sharer for environments without any share facility.
type Unavailable struct{}

// Available always returns false.
func (Unavailable) Available(context.Context) bool { return false }

// Share always fails; callers are expected to check Available first.
func (Unavailable) Share(_ context.Context, req Request) error {
	return fmt.Errorf("sharing is not available for %s", req.Path)
}

// OpenSharer opens the file with the desktop's default application, or
// with a configured command that receives the path as its last argument.
type OpenSharer struct {
	// Command overrides the system opener. Empty means open/xdg-open/start.
	Command []string
}

// Available reports whether the opener binary is on PATH.
func (s OpenSharer) Available(context.Context) bool {
	name, _, err := s.command("")
	if err != nil {
		return false
	}
	_, err = exec.LookPath(name)
	return err == nil
}

// Share launches the opener and waits for it to exit.
func (s OpenSharer) Share(ctx context.Context, req Request) error {
	name, args, err := s.command(req.Path)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(),
		"MEMNOTES_SHARE_MIME="+req.MimeType,
		"MEMNOTES_SHARE_FILENAME="+req.Filename,
		"MEMNOTES_SHARE_TITLE="+req.DialogTitle,
		"MEMNOTES_SHARE_UTI="+req.UTI,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, out)
	}
	return nil
}

func (s OpenSharer) command(path string) (string, []string, error) {
	if len(s.Command) > 0 {
		args := append([]string{}, s.Command[1:]...)
		if path != "" {
			args = append(args, path)
		}
		return s.Command[0], args, nil
	}

	var name string
	var args []string
	switch runtime.GOOS {
	case "windows":
		// The empty quoted string is the window title.
		name, args = "cmd", []string{"/c", "start", `""`}
	case "darwin":
		name = "open"
	case "linux", "freebsd", "openbsd", "netbsd":
		name = "xdg-open"
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	if path != "" {
		args = append(args, path)
	}
	return name, args, nil
}

// DirSharer shares by copying the file into a directory (a synced folder,
// a mounted share, an outbox) under its display name.
type DirSharer struct {
	Dir string
}

// Available reports whether Dir is set.
func (s DirSharer) Available(context.Context) bool {
	return s.Dir != ""
}

// Share copies req.Path to Dir/req.Filename, replacing any previous copy.
func (s DirSharer) Share(ctx context.Context, req Request) error {
	if err := safefile.EnsureDir(s.Dir); err != nil {
		return err
	}

	name := safefile.SanitizeFilename(req.Filename, filepath.Base(req.Path))
	dst := filepath.Join(s.Dir, name)

	src, err := safefile.OpenRead(req.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	return safefile.WriteAtomic(dst, func(f *os.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := io.Copy(f, src)
		return err
	})
}
