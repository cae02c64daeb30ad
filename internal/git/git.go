// Package git reads diffs and file contents by running the git binary.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrNotRepository = errors.New("not a git repository")
	ErrNotFound      = errors.New("file not found at revision")
)

// Comparison selects the two sides of a review. With no refs it compares the
// working tree against HEAD; Staged compares the index against Base (HEAD
// when empty). Head and Staged are mutually exclusive.
type Comparison struct {
	Base   string
	Head   string
	Staged bool
}

// Key names the comparison, e.g. "main..feature" or "HEAD..index".
func (c Comparison) Key() string {
	switch {
	case c.Staged:
		return c.oldRef() + "..index"
	case c.Head != "":
		return c.oldRef() + ".." + c.Head
	default:
		return c.oldRef() + "..working-tree"
	}
}

// WorkingTree reports whether the new side is the working tree.
func (c Comparison) WorkingTree() bool {
	return !c.Staged && c.Head == ""
}

func (c Comparison) oldRef() string {
	if c.Base == "" {
		return "HEAD"
	}
	return c.Base
}

// diffFlags pins the output format regardless of user configuration:
// diff.mnemonicPrefix, diff.noprefix, diff.relative and diff.renames would
// otherwise change the paths the parser sees.
var diffFlags = []string{
	"--no-color",
	"--no-ext-diff",
	"--no-relative",
	"--no-renames",
	"--src-prefix=a/",
	"--dst-prefix=b/",
}

func (c Comparison) diffArgs() []string {
	args := append([]string{"diff"}, diffFlags...)
	switch {
	case c.Staged:
		args = append(args, "--staged", c.oldRef())
	case c.Head != "":
		args = append(args, c.oldRef(), c.Head)
	default:
		args = append(args, c.oldRef())
	}
	return append(args, "--")
}

// Client runs git in a repository directory. Paths passed to and returned by
// a Client are relative to that directory, which should be the repository
// root; use Open to get one.
type Client struct {
	dir string
}

// NewClient returns a client running git in dir as is.
func NewClient(dir string) *Client {
	return &Client{dir: dir}
}

// Open returns a client rooted at the top level of the repository that
// contains dir, so diff paths and working-tree reads agree from any
// subdirectory.
func Open(ctx context.Context, dir string) (*Client, error) {
	root, err := NewClient(dir).RepoRoot(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(root), nil
}

// Dir returns the directory git runs in.
func (c *Client) Dir() string {
	return c.dir
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	return c.runAllowing(ctx, nil, args...)
}

// runAllowing treats the listed exit codes as success. git diff --no-index
// exits 1 when the inputs differ and git grep exits 1 when nothing matches.
func (c *Client) runAllowing(ctx context.Context, okCodes []int, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && slices.Contains(okCodes, exitErr.ExitCode()) {
			return output, nil
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "not a git repository") {
			return nil, fmt.Errorf("%s: %w", c.dir, ErrNotRepository)
		}
		if msg != "" {
			return nil, fmt.Errorf("git %s: %s: %w", args[0], msg, err)
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return output, nil
}

// RepoRoot returns the top-level directory of the repository.
func (c *Client) RepoRoot(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Diff returns the unified diff for cmp. Against the working tree, untracked
// files that are not ignored are included as whole-file additions.
func (c *Client) Diff(ctx context.Context, cmp Comparison) (string, error) {
	out, err := c.run(ctx, cmp.diffArgs()...)
	if err != nil {
		return "", fmt.Errorf("failed to get diff for %s: %w", cmp.Key(), err)
	}
	if !cmp.WorkingTree() {
		return string(out), nil
	}

	untracked, err := c.UntrackedFiles(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Write(out)
	for _, path := range untracked {
		fileDiff, err := c.untrackedDiff(ctx, path)
		if err != nil {
			return "", err
		}
		b.WriteString(fileDiff)
	}
	return b.String(), nil
}

// UntrackedFiles lists files in the working tree that git does not track and
// does not ignore.
func (c *Client) UntrackedFiles(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "ls-files", "--others", "--exclude-standard", "--full-name", "-z")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}
	return ParseFileList(string(out)), nil
}

func (c *Client) untrackedDiff(ctx context.Context, path string) (string, error) {
	args := []string{
		"diff", "--no-index", "--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/",
		"--", "/dev/null", filepath.ToSlash(path),
	}
	out, err := c.runAllowing(ctx, []int{1}, args...)
	if err != nil {
		return "", fmt.Errorf("failed to diff untracked file %s: %w", path, err)
	}
	return string(out), nil
}

// GrepFiles lists tracked files whose content contains text literally.
func (c *Client) GrepFiles(ctx context.Context, text string) ([]string, error) {
	out, err := c.runAllowing(ctx, []int{1}, "grep", "-l", "-z", "-F", "--full-name", "--", text)
	if err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", text, err)
	}
	return ParseFileList(string(out)), nil
}

// OldContent returns the file as it was on the base side of cmp.
func (c *Client) OldContent(ctx context.Context, cmp Comparison, path string) ([]byte, error) {
	return c.ShowFile(ctx, cmp.oldRef(), path)
}

// NewContent returns the file as it is on the compared side of cmp: a
// revision, the index, or the working tree.
func (c *Client) NewContent(ctx context.Context, cmp Comparison, path string) ([]byte, error) {
	switch {
	case cmp.Staged:
		return c.ShowFile(ctx, "", path)
	case cmp.Head != "":
		return c.ShowFile(ctx, cmp.Head, path)
	default:
		return c.ReadWorkingFile(path)
	}
}

// ShowFile returns a blob at ref; an empty ref reads the index. Paths are
// relative to the repository root whatever the client's directory.
func (c *Client) ShowFile(ctx context.Context, ref, path string) ([]byte, error) {
	out, err := c.run(ctx, "show", ref+":"+filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, ErrNotRepository) {
			return nil, err
		}
		return nil, fmt.Errorf("%s@%s: %w", path, ref, ErrNotFound)
	}
	return out, nil
}

// ReadWorkingFile reads path relative to the client's directory.
func (c *Client) ReadWorkingFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ParseFileList splits git path listings, newline or NUL separated, into
// paths.
func ParseFileList(output string) []string {
	files := []string{}
	for _, line := range strings.FieldsFunc(output, func(r rune) bool { return r == '\n' || r == 0 }) {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files
}
