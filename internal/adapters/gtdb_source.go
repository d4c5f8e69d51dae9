package adapters

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

const (
	gtdbRootID   = "1"
	gtdbRootName = "root"
	gtdbRootRank = "no rank"
)

var gtdbRanks = map[string]string{
	"d": "domain",
	"p": "phylum",
	"c": "class",
	"o": "order",
	"f": "family",
	"g": "genus",
	"s": "species",
}

// GTDBSource reads one or more GTDB taxonomy files (comma separated,
// optionally gzipped). Each line maps a genome accession to a lineage like
// "d__Bacteria;p__Proteobacteria;...;s__Escherichia coli". Every taxon is
// emitted once, keyed by its prefixed label, under a synthetic root "1".
type GTDBSource struct {
	Paths []string
}

func NewGTDBSource(input string) GTDBSource {
	return GTDBSource{Paths: splitInputs(input)}
}

func (s GTDBSource) RootID() string {
	return gtdbRootID
}

func (s GTDBSource) Records(ctx context.Context, yield func(types.Record) error) error {
	if len(s.Paths) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("gtdb input is empty")
	}
	if err := yield(types.Record{ID: gtdbRootID, Name: gtdbRootName, Rank: gtdbRootRank}); err != nil {
		return err
	}
	seen := map[string]struct{}{gtdbRootID: {}}
	for _, path := range s.Paths {
		if err := s.readFile(ctx, path, seen, yield); err != nil {
			return err
		}
	}
	return nil
}

func (s GTDBSource) readFile(ctx context.Context, path string, seen map[string]struct{}, yield func(types.Record) error) error {
	reader, err := openInput(path)
	if err != nil {
		return err
	}
	defer reader.Close()
	return scanLines(ctx, reader, func(lineNo int, line string) error {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			return nil
		}
		_, lineage, ok := strings.Cut(line, "\t")
		if !ok {
			return malformedLine(path, lineNo)
		}
		parent := gtdbRootID
		for _, label := range strings.Split(lineage, ";") {
			label = strings.TrimSpace(label)
			prefix, name, ok := strings.Cut(label, "__")
			if !ok || name == "" {
				continue
			}
			if _, done := seen[label]; !done {
				seen[label] = struct{}{}
				if err := yield(types.Record{
					ID:       label,
					ParentID: parent,
					Name:     name,
					Rank:     gtdbRanks[prefix],
				}); err != nil {
					return err
				}
			}
			parent = label
		}
		return nil
	})
}

var _ ports.RecordSource = GTDBSource{}
