package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "housingcli/internal/errors"
)

func TestValidateRawInput(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	tests := []struct {
		name    string
		path    string
		errType apperrors.ErrorType
	}{
		{"csv", write("sales.csv", "a,b\n1,2\n"), ""},
		{"upper xlsx", write("SALES.XLSX", "PK"), ""},
		{"missing", filepath.Join(dir, "missing.csv"), apperrors.ErrTypeNotFound},
		{"directory", filepath.Join(dir, "sub.csv"), apperrors.ErrTypeValidation},
		{"lock file", write("~$sales.xlsx", "x"), apperrors.ErrTypeValidation},
		{"unsupported", write("sales.txt", "a,b"), apperrors.ErrTypeValidation},
		{"empty", write("empty.csv", ""), apperrors.ErrTypeValidation},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRawInput(tt.path)
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), err.Error())
		})
	}
}

func TestValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "analytics")
	require.NoError(t, NewFileValidator(nil).ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file is removed")
}

func TestIsRawInputExtension(t *testing.T) {
	assert.True(t, IsRawInputExtension(".CSV"))
	assert.True(t, IsRawInputExtension(".xlsm"))
	assert.False(t, IsRawInputExtension(".xls"))
	assert.False(t, IsRawInputExtension(""))
}
