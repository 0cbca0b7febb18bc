package repository

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
)

// Detector identifies python project roots and provides project-related information
type Detector struct {
	fs      afs.Service
	markers []string
}

// New creates a new project detector instance
func New() *Detector {
	return &Detector{
		fs: afs.New(),
		markers: []string{
			"pyproject.toml",
			"setup.py",
			"setup.cfg",
			"requirements.txt",
			"Pipfile",
			".git",
		},
	}
}

// DetectProject identifies the project root for the given file path and returns project info
func (d *Detector) DetectProject(ctx context.Context, filePath string) (*Project, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	startDir := absPath
	fileInfo, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	rootPath, projectType := d.findProjectRoot(startDir)
	info := &Project{Type: "unknown", RootPath: startDir, Name: filepath.Base(startDir)}
	if rootPath != "" {
		info.RootPath = rootPath
		info.Type = projectType
		info.Name = d.extractProjectName(ctx, rootPath, projectType)
	}
	relPath, err := filepath.Rel(info.RootPath, absPath)
	if err != nil {
		relPath = filepath.Base(absPath)
	}
	info.RelativePath = filepath.ToSlash(relPath)
	return info, nil
}

// DetectRepository identifies the repository containing the given file path
func (d *Detector) DetectRepository(ctx context.Context, filePath string) (*Repository, error) {
	info, err := d.DetectProject(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if gitRoot := d.findGitRoot(info.RootPath); gitRoot != "" {
		return &Repository{Kind: "git", Root: gitRoot, Origin: d.extractGitOrigin(ctx, gitRoot), Info: info}, nil
	}
	return &Repository{Kind: info.Type, Root: info.RootPath, Info: info}, nil
}

// findProjectRoot searches up from the start directory for project markers
func (d *Detector) findProjectRoot(startDir string) (string, string) {
	for dir := startDir; ; {
		for _, marker := range d.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, determineProjectType(marker)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ""
		}
		dir = parent
	}
}

// findGitRoot finds the root of the git repository containing the given directory
func (d *Detector) findGitRoot(startDir string) string {
	homeDir := os.Getenv("HOME")
	for dir := startDir; ; {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir || parent == homeDir {
			return ""
		}
		dir = parent
	}
}

// extractGitOrigin extracts the origin URL from git config
func (d *Detector) extractGitOrigin(ctx context.Context, gitRoot string) string {
	value, _ := d.sectionValue(ctx, filepath.Join(gitRoot, ".git", "config"), `remote "origin"`, "url")
	return value
}

// extractProjectName attempts to extract a project name from python packaging files
func (d *Detector) extractProjectName(ctx context.Context, rootPath string, projectType string) string {
	if projectType == "python" {
		if name := d.pyprojectName(ctx, filepath.Join(rootPath, "pyproject.toml")); name != "" {
			return name
		}
		if name, ok := d.sectionValue(ctx, filepath.Join(rootPath, "setup.cfg"), "metadata", "name"); ok {
			return name
		}
		if name := d.setupName(ctx, filepath.Join(rootPath, "setup.py")); name != "" {
			return name
		}
	}
	if projectType == "git" {
		if origin := d.extractGitOrigin(ctx, rootPath); origin != "" {
			parts := strings.Split(strings.TrimSuffix(origin, ".git"), "/")
			return parts[len(parts)-1]
		}
	}
	return filepath.Base(rootPath)
}

type pyproject struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// pyprojectName returns [project] name or [tool.poetry] name of pyproject.toml
func (d *Detector) pyprojectName(ctx context.Context, path string) string {
	data, err := d.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return ""
	}
	meta := &pyproject{}
	if _, err = toml.Decode(string(data), meta); err != nil {
		return ""
	}
	if meta.Project.Name != "" {
		return meta.Project.Name
	}
	return meta.Tool.Poetry.Name
}

var setupNameRegex = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)

func (d *Detector) setupName(ctx context.Context, setupPath string) string {
	data, err := d.fs.DownloadWithURL(ctx, setupPath)
	if err != nil {
		return ""
	}
	matches := setupNameRegex.FindSubmatch(data)
	if len(matches) < 2 {
		return ""
	}
	return string(matches[1])
}

// sectionValue reads key of a [section] in ini styled files (setup.cfg, git config)
func (d *Detector) sectionValue(ctx context.Context, path, section, key string) (string, bool) {
	data, err := d.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return "", false
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	inSection := false
	for scanner.Scan() {
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inSection = strings.TrimSpace(line[1:len(line)-1]) == section
			continue
		}
		if !inSection {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(name) != key {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		return value, value != ""
	}
	return "", false
}

// stripComment removes a # or ; comment starting the line or following whitespace
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' && line[i] != ';' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return line[:i]
		}
	}
	return line
}

// determineProjectType identifies the type of project based on the marker file
func determineProjectType(marker string) string {
	switch marker {
	case "pyproject.toml", "setup.py", "setup.cfg", "requirements.txt", "Pipfile":
		return "python"
	case ".git":
		return "git"
	default:
		return "unknown"
	}
}
