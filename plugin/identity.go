package plugin

import (
	"os"
	"path/filepath"

	"github.com/hupe1980/pluginmesh/store"
)

// Identity carries the declared, immutable identity of a plugin. Name and
// Version are required; everything else has a usable zero value.
type Identity struct {
	// Name uniquely identifies the plugin within the host.
	Name string
	// Version is the plugin's version string.
	Version string
	// Author names the plugin author.
	Author string
	// Description is a human-readable summary.
	Description string
	// Dependencies maps dependency plugin names to version constraints.
	Dependencies map[string]string
	// SaveFormat selects the persisted data file encoding. Defaults to json.
	SaveFormat store.Format
}

// validate checks the required fields and fills defaults in place.
func (id *Identity) validate() error {
	if id.Name == "" {
		return &IdentityError{Field: "name"}
	}
	if id.Version == "" {
		return &IdentityError{Field: "version"}
	}
	if id.Dependencies == nil {
		id.Dependencies = map[string]string{}
	}
	if id.SaveFormat == "" {
		id.SaveFormat = store.FormatJSON
	}
	return nil
}

// Paths holds the derived on-disk locations of a plugin. The working
// directory is keyed by the name of the plugin's source directory, which may
// differ from the declared identity name.
type Paths struct {
	// SourceDir is the directory the plugin's source lives in.
	SourceDir string
	// SourceFile is the plugin's main source file, if known.
	SourceFile string
	// WorkDir is the per-plugin persistent working directory.
	WorkDir string
	// DataFile is the persisted data file inside WorkDir.
	DataFile string
}

// resolvePaths derives the plugin paths under persistentRoot and reports
// whether this is the plugin's first load (working directory or data file
// absent before construction). The working directory is created if missing;
// a non-directory at its path fails with *WorkspaceError.
func resolvePaths(pluginName, persistentRoot, sourceDir, sourceFile string, format store.Format) (Paths, bool, error) {
	sourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return Paths{}, false, err
	}

	dirName := filepath.Base(sourceDir)
	workDir := filepath.Join(persistentRoot, dirName)
	dataFile := filepath.Join(workDir, dirName+"."+format.Ext())

	firstLoad := false
	info, err := os.Stat(workDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return Paths{}, false, err
		}
		firstLoad = true
	case err != nil:
		return Paths{}, false, err
	case !info.IsDir():
		return Paths{}, false, &WorkspaceError{Plugin: pluginName, Path: workDir}
	}

	if _, err := os.Stat(dataFile); os.IsNotExist(err) {
		firstLoad = true
	}

	return Paths{
		SourceDir:  sourceDir,
		SourceFile: sourceFile,
		WorkDir:    workDir,
		DataFile:   dataFile,
	}, firstLoad, nil
}
