package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SaveTOML writes data to filePath as TOML with mode 0600, creating the
// parent directory with mode 0700.
func SaveTOML(filePath string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(file)
	enc.Indent = ""
	if err := enc.Encode(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filePath, err)
	}
	return file.Close()
}

// LoadTOML decodes filePath into data. The returned metadata reports which
// keys were present and which were not recognized.
func LoadTOML(filePath string, data interface{}) (toml.MetaData, error) {
	return toml.DecodeFile(filePath, data)
}
