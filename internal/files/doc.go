// Package files locates the raw housing transactions file the pipeline reads.
//
// Discovery looks in the raw data directory and prefers the conventional
// Housing_data.csv, then the first CSV by name, then the first XLSX workbook.
//
//	discovery := files.NewDiscovery(paths.Root)
//	input, err := discovery.FindRawInput(paths.RawDir)
//	if errors.Is(err, apperrors.ErrNoInputFile) {
//	    // nothing to process
//	}
package files
