package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// WriteDocuments writes one pretty-printed JSON document per quote into
// dir, named by quote ID. Returns the written file paths.
func WriteDocuments(dir string, quotes []*model.QuoteRecord) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create dir %s", dir)
	}

	paths := make([]string, 0, len(quotes))
	for _, q := range quotes {
		path := filepath.Join(dir, q.QuoteID+".json")
		data, err := json.MarshalIndent(q, "", "  ")
		if err != nil {
			return paths, eris.Wrapf(err, "export: marshal quote %s", q.QuoteID)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return paths, eris.Wrapf(err, "export: write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
