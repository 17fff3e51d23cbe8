// Package source resolves batch-mode inputs. An input is either a
// doublestar glob over local markdown files or an http(s) URL.
package source

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"
	"resty.dev/v3"
)

// Input is one resolvable batch input.
type Input struct {
	// Name identifies the input in output paths and diagnostics: the
	// file path for local inputs, the URL basename for remote ones.
	Name   string
	Remote bool
	url    string
	path   string
}

// Resolve expands the given arguments into concrete inputs. Globs that
// match nothing are an error so typos do not pass silently.
func Resolve(args []string) ([]Input, error) {
	var inputs []Input
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			inputs = append(inputs, Input{
				Name:   remoteName(arg),
				Remote: true,
				url:    arg,
			})
			continue
		}

		matches, err := expandGlob(arg)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			inputs = append(inputs, Input{Name: m, path: m})
		}
	}
	return inputs, nil
}

// Read fetches the input's content.
func (in *Input) Read(ctx context.Context, client *resty.Client) ([]byte, error) {
	if !in.Remote {
		content, err := os.ReadFile(in.path)
		if err != nil {
			return nil, oops.
				Code("READ_FAILED").
				With("path", in.path).
				Wrapf(err, "reading input file")
		}
		return content, nil
	}

	response, err := client.R().SetContext(ctx).Get(in.url)
	if err != nil {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("url", in.url).
			Wrapf(err, "downloading input")
	}
	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("url", in.url).
			With("status", response.StatusCode()).
			Errorf("input url returned non-success status %d", response.StatusCode())
	}
	content, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("url", in.url).
			Wrapf(err, "reading response body")
	}
	return content, nil
}

func expandGlob(pattern string) ([]string, error) {
	// Plain paths skip the glob machinery so error messages stay
	// specific.
	if !strings.ContainsAny(pattern, "*?[{") {
		if _, err := os.Stat(pattern); err != nil {
			return nil, oops.
				Code("INPUT_NOT_FOUND").
				With("path", pattern).
				Hint("Check the path or quote the glob so the shell does not eat it").
				Wrapf(err, "input %q does not exist", pattern)
		}
		return []string{pattern}, nil
	}

	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(base), rest)
	if err != nil {
		return nil, oops.
			Code("BAD_PATTERN").
			With("pattern", pattern).
			Wrapf(err, "expanding glob %q", pattern)
	}
	if len(matches) == 0 {
		return nil, oops.
			Code("INPUT_NOT_FOUND").
			With("pattern", pattern).
			Errorf("glob %q matched no files", pattern)
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(base, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

func remoteName(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	base := path.Base(trimmed[strings.Index(trimmed, "//")+2:])
	if base == "" || base == "." {
		return "remote.md"
	}
	return base
}
