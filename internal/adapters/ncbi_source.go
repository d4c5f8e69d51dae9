package adapters

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/sync/errgroup"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

const (
	ncbiRootID      = "1"
	ncbiNodesFile   = "nodes.dmp"
	ncbiNamesFile   = "names.dmp"
	ncbiFieldSep    = "\t|\t"
	ncbiScientific  = "scientific name"
	ncbiArchiveFile = "taxdump.tar.gz"
)

// NCBIDumpSource reads an NCBI taxdump, either an extracted directory
// holding nodes.dmp and names.dmp (optionally gzipped) or the
// taxdump.tar.gz archive itself. Only scientific names are kept.
type NCBIDumpSource struct {
	Path string
	Root string
}

func NewNCBIDumpSource(path string, root string) NCBIDumpSource {
	if strings.TrimSpace(root) == "" {
		root = ncbiRootID
	}
	return NCBIDumpSource{Path: path, Root: root}
}

func (s NCBIDumpSource) RootID() string {
	return s.Root
}

type ncbiNode struct {
	id     string
	parent string
	rank   string
}

func (s NCBIDumpSource) Records(ctx context.Context, yield func(types.Record) error) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("ncbi dump not found: " + s.Path).
			WithCause(err)
	}
	var nodes []ncbiNode
	var names map[string]string
	if info.IsDir() {
		nodes, names, err = readNCBIDir(ctx, s.Path)
	} else {
		nodes, names, err = readNCBIArchive(ctx, s.Path)
	}
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if err := yield(types.Record{
			ID:       node.id,
			ParentID: node.parent,
			Name:     names[node.id],
			Rank:     node.rank,
		}); err != nil {
			return err
		}
	}
	return nil
}

// readNCBIDir parses nodes.dmp and names.dmp concurrently.
func readNCBIDir(ctx context.Context, dir string) ([]ncbiNode, map[string]string, error) {
	nodesPath, err := locateDumpFile(dir, ncbiNodesFile)
	if err != nil {
		return nil, nil, err
	}
	namesPath, err := locateDumpFile(dir, ncbiNamesFile)
	if err != nil {
		return nil, nil, err
	}
	var nodes []ncbiNode
	var names map[string]string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		reader, err := openInput(nodesPath)
		if err != nil {
			return err
		}
		defer reader.Close()
		nodes, err = parseNCBINodes(groupCtx, reader)
		return err
	})
	group.Go(func() error {
		reader, err := openInput(namesPath)
		if err != nil {
			return err
		}
		defer reader.Close()
		names, err = parseNCBINames(groupCtx, reader)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return nodes, names, nil
}

func locateDumpFile(dir string, name string) (string, error) {
	for _, candidate := range []string{name, name + ".gz"} {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("ncbi dump is missing " + name + " in " + dir)
}

// readNCBIArchive streams taxdump.tar.gz once, picking out the two member
// files it needs.
func readNCBIArchive(ctx context.Context, path string) ([]ncbiNode, map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("ncbi archive not found: " + path).
			WithCause(err)
	}
	defer file.Close()
	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("ncbi archive is not gzipped: " + path).
			WithCause(err)
	}
	defer gz.Close()

	var nodes []ncbiNode
	var names map[string]string
	archive := tar.NewReader(gz)
	for nodes == nil || names == nil {
		header, err := archive.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read ncbi archive").
				WithCause(err)
		}
		switch filepath.Base(header.Name) {
		case ncbiNodesFile:
			if nodes, err = parseNCBINodes(ctx, archive); err != nil {
				return nil, nil, err
			}
		case ncbiNamesFile:
			if names, err = parseNCBINames(ctx, archive); err != nil {
				return nil, nil, err
			}
		}
	}
	if nodes == nil || names == nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("ncbi archive must contain nodes.dmp and names.dmp")
	}
	return nodes, names, nil
}

func splitDumpLine(line string) []string {
	line = strings.TrimSuffix(strings.TrimRight(line, "\r"), "\t|")
	return strings.Split(line, ncbiFieldSep)
}

func parseNCBINodes(ctx context.Context, reader io.Reader) ([]ncbiNode, error) {
	nodes := []ncbiNode{}
	err := scanLines(ctx, reader, func(lineNo int, line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		fields := splitDumpLine(line)
		if len(fields) < 3 {
			return malformedLine(ncbiNodesFile, lineNo)
		}
		nodes = append(nodes, ncbiNode{
			id:     strings.TrimSpace(fields[0]),
			parent: strings.TrimSpace(fields[1]),
			rank:   strings.TrimSpace(fields[2]),
		})
		return nil
	})
	return nodes, err
}

func parseNCBINames(ctx context.Context, reader io.Reader) (map[string]string, error) {
	names := map[string]string{}
	err := scanLines(ctx, reader, func(lineNo int, line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		fields := splitDumpLine(line)
		if len(fields) < 4 {
			return malformedLine(ncbiNamesFile, lineNo)
		}
		if strings.TrimSpace(fields[3]) != ncbiScientific {
			return nil
		}
		names[strings.TrimSpace(fields[0])] = strings.TrimSpace(fields[1])
		return nil
	})
	return names, err
}

func malformedLine(file string, lineNo int) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(file + ": malformed line " + strconv.Itoa(lineNo))
}

var _ ports.RecordSource = NCBIDumpSource{}
