package history

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Exporter writes the store as CSV to a local file and, when a blob writer
// is configured, uploads the same bytes to object storage.
type Exporter struct {
	store  *Store
	path   string
	blob   domain.BlobWriter
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter creates an Exporter. An empty localPath skips the local file;
// a nil blob skips the upload.
func NewExporter(store *Store, localPath string, blob domain.BlobWriter, prefix string, logger *slog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		path:   localPath,
		blob:   blob,
		prefix: prefix,
		logger: logger.With(slog.String("component", "history_exporter")),
		now:    time.Now,
	}
}

// Export writes the current series. The object key is
// <prefix>/history-<UTC timestamp>.csv.
func (e *Exporter) Export(ctx context.Context) error {
	var buf bytes.Buffer
	if err := e.store.WriteCSV(&buf); err != nil {
		return err
	}

	if e.path != "" {
		if err := os.WriteFile(e.path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("history: write %s: %w", e.path, err)
		}
		e.logger.Info("history exported", slog.String("path", e.path))
	}

	if e.blob != nil {
		key := path.Join(e.prefix, "history-"+e.now().UTC().Format("20060102T150405Z")+".csv")
		if err := e.blob.Put(ctx, key, bytes.NewReader(buf.Bytes()), "text/csv"); err != nil {
			return fmt.Errorf("history: upload %s: %w", key, err)
		}
		e.logger.Info("history uploaded", slog.String("key", key))
	}
	return nil
}
