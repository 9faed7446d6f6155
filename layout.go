package samplecheck

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Project layout conventions for sample files.
const (
	SampleFileSuffix = "_data.json"
	SchemaFileSuffix = "_schema.json"
	ResourcesDir     = "resources"
	ModulesDir       = "modules"
)

// ResourceDir returns the resources directory of a module under root. The
// default module ("") keeps its resources at the project root.
func ResourceDir(root, module string) string {
	if module == "" {
		return filepath.Join(root, ResourcesDir)
	}
	return filepath.Join(root, ModulesDir, module, ResourcesDir)
}

// DiscoverSampleFiles lists the *_data.json files below a module's resources
// directory in lexical order. A missing directory yields no files.
func DiscoverSampleFiles(root, module string) ([]string, error) {
	dir := ResourceDir(root, module)
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), SampleFileSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "discover sample files in %s", dir)
	}
	return files, nil
}

// MergedPath returns where the merged samples of typeName are written: the
// type's module resources directory, or outDir when it is set.
func MergedPath(root, outDir, typeName string) string {
	return targetPath(root, outDir, typeName, SampleFileSuffix)
}

// SchemaPath returns where the exported schema of typeName is written.
func SchemaPath(root, outDir, typeName string) string {
	return targetPath(root, outDir, typeName, SchemaFileSuffix)
}

func targetPath(root, outDir, typeName, suffix string) string {
	name := ShortName(typeName) + suffix
	if outDir != "" {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(ResourceDir(root, ModuleOf(typeName)), name)
}
