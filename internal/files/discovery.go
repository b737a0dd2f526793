package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "housingcli/internal/errors"
)

// PreferredInputName is picked over any other file in the raw directory.
const PreferredInputName = "Housing_data.csv"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindByExtension lists regular files in dir with one of the given
// extensions, case-insensitively, sorted by name.
func (d *Discovery) FindByExtension(dir string, exts ...string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", fullPath), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") || !hasExtension(name, exts) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FindCSVFiles finds all CSV files in the specified directory
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.FindByExtension(dir, ".csv")
}

// FindExcelFiles finds all XLSX workbooks in the specified directory
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	return d.FindByExtension(dir, ".xlsx", ".xlsm")
}

// FindRawInput picks the file the pipeline should read from dir.
// It returns an error wrapping ErrNoInputFile when nothing usable is present.
func (d *Discovery) FindRawInput(dir string) (FileInfo, error) {
	fullPath := d.resolve(dir)

	preferred := filepath.Join(fullPath, PreferredInputName)
	if info, err := os.Stat(preferred); err == nil && !info.IsDir() {
		return FileInfo{
			Path:    preferred,
			Name:    PreferredInputName,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}, nil
	}

	csvFiles, err := d.FindCSVFiles(fullPath)
	if err != nil {
		return FileInfo{}, err
	}
	if len(csvFiles) > 0 {
		return csvFiles[0], nil
	}

	workbooks, err := d.FindExcelFiles(fullPath)
	if err != nil {
		return FileInfo{}, err
	}
	if len(workbooks) > 0 {
		return workbooks[0], nil
	}

	return FileInfo{}, apperrors.NewNotFoundError(
		fmt.Sprintf("raw input in %s", fullPath), apperrors.ErrNoInputFile)
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}
