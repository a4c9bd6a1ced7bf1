// Package mailbox abstracts how raw emails reach the pipeline. The core never
// talks IMAP or OAuth itself; a source hands over already-fetched messages.
package mailbox

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobpilot/internal/model"
)

// Source yields messages received at or after since, oldest first.
type Source interface {
	Fetch(ctx context.Context, since time.Time) ([]model.Email, error)
}

// DirSource reads one JSON-encoded model.Email per file from a directory.
// It is the export-based integration path: anything that can dump messages to
// disk (a Gmail takeout script, an IMAP fetcher, a test fixture) can feed the
// pipeline.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fetch(ctx context.Context, since time.Time) ([]model.Email, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "mailbox: read dir %s", s.dir)
	}

	var emails []model.Email
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "mailbox: fetch")
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "mailbox: read %s", path)
		}

		var e model.Email
		if err := json.Unmarshal(data, &e); err != nil {
			// One corrupt export file must not sink the whole fetch.
			zap.L().Warn("mailbox: skipping unparseable file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		if e.MessageRef == "" {
			e.MessageRef = entry.Name()
		}
		if e.Date.Before(since) {
			continue
		}
		emails = append(emails, e)
	}

	sort.Slice(emails, func(i, j int) bool { return emails[i].Date.Before(emails[j].Date) })
	return emails, nil
}
