package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// readRecord loads a compliance record from a JSON file.
func readRecord(path string) (*domain.ComplianceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	record := domain.NewComplianceRecord()
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", path, err)
	}
	return record, nil
}

// writeRecord writes record to path as indented JSON.
// The file is replaced atomically.
func writeRecord(path string, record *domain.ComplianceRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// printRecord writes record to the command output as indented JSON.
func printRecord(cmd *cobra.Command, record *domain.ComplianceRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// errNotConfigured names the missing service.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s: %w", name, domain.ErrNotConfigured)
}

// errOffline is returned by remote commands when no store URL is set.
var errOffline = errors.New("remote store not configured (set remote.url with 'ssp config set')")
