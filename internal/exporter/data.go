package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/imgpick/internal/storage"
)

// historyFile is the YAML document layout.
type historyFile struct {
	ExportedAt time.Time          `yaml:"exportedAt"`
	Count      int                `yaml:"count"`
	Uploads    []storage.Document `yaml:"uploads"`
}

// ExportYAML writes the history as a YAML document.
func ExportYAML(w io.Writer, docs []storage.Document, now time.Time) error {
	data, err := yaml.Marshal(&historyFile{
		ExportedAt: now.UTC(),
		Count:      len(docs),
		Uploads:    docs,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	_, err = w.Write(data)
	return err
}

// ParquetRow is one upload as stored in the Parquet export.
type ParquetRow struct {
	ID          string `parquet:"id"`
	URL         string `parquet:"url"`
	Name        string `parquet:"name"`
	Description string `parquet:"description"`
	Filter      string `parquet:"filter"`
	CreatedAtMs int64  `parquet:"created_at_ms"`
}

// ExportParquet writes the history as a single Parquet row group.
func ExportParquet(w io.Writer, docs []storage.Document) error {
	rows := make([]ParquetRow, len(docs))
	for i, d := range docs {
		rows[i] = ParquetRow{
			ID:          d.ID,
			URL:         d.URL,
			Name:        d.Name,
			Description: d.Description,
			Filter:      d.Filter,
			CreatedAtMs: d.CreatedAt.UnixMilli(),
		}
	}

	writer := parquet.NewGenericWriter[ParquetRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
