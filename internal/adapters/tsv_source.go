package adapters

import (
	"context"
	"strings"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

// TSVSource reads tab separated id, parent id, name and rank columns.
// Blank lines and lines starting with '#' are skipped; missing trailing
// columns are empty.
type TSVSource struct {
	Path string
	Root string
}

func NewTSVSource(path string, root string) TSVSource {
	return TSVSource{Path: path, Root: root}
}

func (s TSVSource) RootID() string {
	return s.Root
}

func (s TSVSource) Records(ctx context.Context, yield func(types.Record) error) error {
	reader, err := openInput(s.Path)
	if err != nil {
		return err
	}
	defer reader.Close()
	return scanLines(ctx, reader, func(_ int, line string) error {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			return nil
		}
		fields := strings.SplitN(line, "\t", 4)
		for len(fields) < 4 {
			fields = append(fields, "")
		}
		return yield(types.Record{
			ID:       fields[0],
			ParentID: fields[1],
			Name:     fields[2],
			Rank:     strings.TrimSpace(fields[3]),
		})
	})
}

var _ ports.RecordSource = TSVSource{}
