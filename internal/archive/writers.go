// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rmm-cli/pkg/rmmfile"
)

// writeZip creates a zip at outPath containing files (slash-separated paths
// relative to root), preserving their modes and modification times.
func writeZip(outPath, root string, files []string, compression rmmfile.Compression) (err error) {
	method := zip.Deflate
	if compression == rmmfile.CompressionStore {
		method = zip.Store
	}

	zipFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, rel := range files {
		if addErr := addZipEntry(zipWriter, root, rel, method); addErr != nil {
			return addErr
		}
	}
	return nil
}

func addZipEntry(zipWriter *zip.Writer, root, rel string, method uint16) error {
	fullPath := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create header for %s: %w", rel, err)
	}
	header.Name = rel
	header.Method = method

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", rel, err)
	}

	src, err := os.Open(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer src.Close()

	if _, err := io.Copy(writer, src); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", rel, err)
	}
	return nil
}

// writeTarGz creates a gzip-compressed tarball at outPath containing files
// (slash-separated paths relative to root).
func writeTarGz(outPath, root string, files []string) (err error) {
	tarFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create tarball: %w", err)
	}
	defer func() {
		if closeErr := tarFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	gzWriter := gzip.NewWriter(tarFile)
	defer func() {
		if closeErr := gzWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	tarWriter := tar.NewWriter(gzWriter)
	defer func() {
		if closeErr := tarWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, rel := range files {
		if addErr := addTarEntry(tarWriter, root, rel); addErr != nil {
			return addErr
		}
	}
	return nil
}

func addTarEntry(tarWriter *tar.Writer, root, rel string) error {
	fullPath := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to create header for %s: %w", rel, err)
	}
	header.Name = rel

	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header %s: %w", rel, err)
	}

	src, err := os.Open(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer src.Close()

	if _, err := io.Copy(tarWriter, src); err != nil {
		return fmt.Errorf("failed to write tar entry %s: %w", rel, err)
	}
	return nil
}
