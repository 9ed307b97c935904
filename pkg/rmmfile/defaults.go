// SPDX-License-Identifier: MPL-2.0

package rmmfile

const (
	// DefaultOutputDir is where finished artifacts land, under .rmmp.
	DefaultOutputDir = "dist"
	// DefaultZipName names the binary archive.
	DefaultZipName = "{id}-{version_code}.zip"
	// DefaultSourceName names the source archive.
	DefaultSourceName = "{id}-{version_code}-source.tar.gz"
)

// BaselineExcludes returns the exclude patterns applied to every binary
// archive: VCS metadata, the rmm working directory, and scratch files.
// The assembler merges these with the build-spec's own excludes.
func BaselineExcludes() []string {
	return []string{".git", WorkDirName, "*.tmp", "*.log"}
}

// SourceExcludes returns the additional exclude patterns applied to the
// source archive on top of BaselineExcludes.
func SourceExcludes() []string {
	return append(BaselineExcludes(), "node_modules")
}

// DefaultBuildSpec synthesizes the BuildSpec used when a project carries no
// Rmake.toml: unset target, dist output, baseline excludes, no hooks,
// deflate compression, default name templates, proxy off.
func DefaultBuildSpec() *BuildSpec {
	return &BuildSpec{
		Build: BuildSection{
			OutputDir: DefaultOutputDir,
			Exclude:   BaselineExcludes(),
			Include:   []string{},
			PreBuild:  []string{},
			PostBuild: []string{},
		},
		Package: PackageSection{
			Compression: CompressionDeflate,
			ZipName:     DefaultZipName,
		},
		Proxy: ProxySection{
			Enabled:    false,
			AutoSelect: true,
		},
		SourcePackage: SourcePackageSection{
			Include:      []string{},
			Exclude:      SourceExcludes(),
			NameTemplate: DefaultSourceName,
		},
	}
}
