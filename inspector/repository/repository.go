package repository

// Repository represents the version control root of a project
type Repository struct {
	Kind   string   `yaml:"kind"` // git, python or unknown
	Root   string   `yaml:"root"`
	Origin string   `yaml:"origin,omitempty"`
	Info   *Project `yaml:"-"`
}

// Project represents information about a detected project
type Project struct {
	RootPath     string `yaml:"rootPath"`     // Absolute path to the project root directory
	Type         string `yaml:"type"`         // python, git or unknown
	Name         string `yaml:"name"`         // Name of the project (extracted from packaging files)
	RelativePath string `yaml:"relativePath"` // Path from project root to the specified file
}
