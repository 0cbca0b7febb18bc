package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/toa/inspector/python"
	"go.uber.org/zap"
)

// AnalyzeFile downloads and analyzes a single python file
func (a *Analyzer) AnalyzeFile(ctx context.Context, URL string) (*Report, error) {
	code, err := a.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %w", URL, err)
	}
	report, err := a.AnalyzeSource(ctx, code, URL)
	if err != nil {
		return nil, err
	}
	if location, ok := localPath(URL); ok {
		repo, err := a.detector.DetectRepository(ctx, location)
		if err != nil {
			a.logger.Debug("project detection failed", zap.String("path", URL), zap.Error(err))
		} else {
			report.Project = repo.Info
			report.Repository = repo
		}
	}
	return report, nil
}

// localPath returns the file system path of a local URL
func localPath(URL string) (string, bool) {
	if !strings.Contains(URL, "://") {
		return URL, true
	}
	if url.Scheme(URL, file.Scheme) != file.Scheme {
		return "", false
	}
	return url.Path(URL), true
}

// AnalyzeDir walks a directory tree and analyzes each matched file as an independent run;
// files that fail to parse are skipped with a warning.
func (a *Analyzer) AnalyzeDir(ctx context.Context, root string) ([]*Report, error) {
	var files []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return a.match(info), nil
		}
		if a.match(info) {
			dir := url.Join(baseURL, parent)
			files = append(files, url.Join(dir, info.Name()))
		}
		return true, nil
	}
	if err := a.fs.Walk(ctx, root, visitor); err != nil {
		return nil, fmt.Errorf("failed to walk %v: %w", root, err)
	}
	sort.Strings(files)
	var reports []*Report
	for _, URL := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, err := a.AnalyzeFile(ctx, URL)
		if err != nil {
			if errors.Is(err, python.ErrParse) || errors.Is(err, python.ErrTooLarge) {
				a.logger.Warn("skipping file", zap.String("path", URL), zap.Error(err))
				continue
			}
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
