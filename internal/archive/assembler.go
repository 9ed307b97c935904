// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"rmm-cli/pkg/rmmfile"
)

// Assembler produces the binary and source archives for one project.
type Assembler struct {
	// Root is the project directory.
	Root string
	// Spec is the loaded build-tooling manifest.
	Spec *rmmfile.BuildSpec
	// Desc names the artifacts via its id/version/version_code.
	Desc *rmmfile.ProjectDescriptor

	logger *log.Logger
}

// NewAssembler wires an Assembler for root.
func NewAssembler(root string, spec *rmmfile.BuildSpec, desc *rmmfile.ProjectDescriptor) *Assembler {
	return &Assembler{
		Root:   root,
		Spec:   spec,
		Desc:   desc,
		logger: log.WithPrefix("archive"),
	}
}

// OutputDir resolves the artifact directory. Relative output_dir values
// land under the project's .rmmp directory.
func (a *Assembler) OutputDir() string {
	out := a.Spec.Build.OutputDir
	if out == "" {
		out = rmmfile.DefaultOutputDir
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(rmmfile.WorkDir(a.Root), out)
}

// Assemble builds both artifacts and returns their final paths. Both names
// are rendered before anything is written, so an unresolved placeholder
// fails the build with the output directory untouched. Each archive is
// written to a temporary path and renamed into place, so downstream publish
// steps never observe a partial file.
func (a *Assembler) Assemble() (*Artifacts, error) {
	if info, err := os.Stat(a.Root); err != nil || !info.IsDir() {
		return nil, &ArchiveError{Op: "locate source tree", Err: statErr(a.Root, err)}
	}

	zipName, err := RenderName(a.zipTemplate(), a.Desc)
	if err != nil {
		return nil, err
	}
	sourceName, err := RenderName(a.sourceTemplate(), a.Desc)
	if err != nil {
		return nil, err
	}

	outDir := a.OutputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &ArchiveError{Op: "create output dir", Err: err}
	}

	binaryFiles, err := selectFiles(a.Root,
		mergePatterns(rmmfile.BaselineExcludes(), a.Spec.Build.Exclude),
		a.Spec.Build.Include)
	if err != nil {
		return nil, &ArchiveError{Op: "select binary files", Err: err}
	}
	sourceFiles, err := selectFiles(a.Root,
		mergePatterns(rmmfile.SourceExcludes(), a.Spec.SourcePackage.Exclude),
		a.Spec.SourcePackage.Include)
	if err != nil {
		return nil, &ArchiveError{Op: "select source files", Err: err}
	}

	zipPath := filepath.Join(outDir, zipName)
	if err := a.writeAtomically(zipPath, func(tmp string) error {
		return writeZip(tmp, a.Root, binaryFiles, a.Spec.Package.Compression)
	}); err != nil {
		return nil, err
	}
	a.logger.Info("binary archive written", "path", zipPath, "files", len(binaryFiles))

	sourcePath := filepath.Join(outDir, sourceName)
	if err := a.writeAtomically(sourcePath, func(tmp string) error {
		return writeTarGz(tmp, a.Root, sourceFiles)
	}); err != nil {
		return nil, err
	}
	a.logger.Info("source archive written", "path", sourcePath, "files", len(sourceFiles))

	return &Artifacts{Zip: zipPath, Source: sourcePath}, nil
}

func (a *Assembler) zipTemplate() string {
	if a.Spec.Package.ZipName != "" {
		return a.Spec.Package.ZipName
	}
	return rmmfile.DefaultZipName
}

func (a *Assembler) sourceTemplate() string {
	if a.Spec.SourcePackage.NameTemplate != "" {
		return a.Spec.SourcePackage.NameTemplate
	}
	return rmmfile.DefaultSourceName
}

// writeAtomically runs write against path+".tmp" and renames the result
// into place, cleaning up the temporary on failure.
func (a *Assembler) writeAtomically(path string, write func(tmp string) error) error {
	tmp := path + ".tmp"
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return &ArchiveError{Op: "write " + filepath.Base(path), Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &ArchiveError{Op: "finalize " + filepath.Base(path), Err: err}
	}
	return nil
}

func statErr(path string, err error) error {
	if err != nil {
		return err
	}
	return errors.New(path + " is not a directory")
}
