package adapters

import (
	"bufio"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

var tsvCleaner = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// TSVTreeWriter writes the four column format TSVSource reads.
type TSVTreeWriter struct{}

func NewTSVTreeWriter() TSVTreeWriter {
	return TSVTreeWriter{}
}

func (TSVTreeWriter) Export(path string, rootID string, records []types.Record) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return writeError(path, err)
	}
	out := bufio.NewWriter(file)
	_, _ = out.WriteString("# root=" + tsvCleaner.Replace(rootID) + "\n")
	for _, rec := range records {
		_, _ = out.WriteString(strings.Join([]string{
			tsvCleaner.Replace(rec.ID),
			tsvCleaner.Replace(rec.ParentID),
			tsvCleaner.Replace(rec.Name),
			tsvCleaner.Replace(rec.Rank),
		}, "\t") + "\n")
	}
	if err := out.Flush(); err != nil {
		file.Close()
		return writeError(path, err)
	}
	if err := file.Close(); err != nil {
		return writeError(path, err)
	}
	return nil
}

// TreeFile is the yaml export document.
type TreeFile struct {
	RootID string       `yaml:"root_id"`
	Nodes  []types.Node `yaml:"nodes"`
}

type YAMLTreeWriter struct{}

func NewYAMLTreeWriter() YAMLTreeWriter {
	return YAMLTreeWriter{}
}

func (YAMLTreeWriter) Export(path string, rootID string, records []types.Record) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	doc := TreeFile{RootID: rootID, Nodes: make([]types.Node, len(records))}
	for i, rec := range records {
		doc.Nodes[i] = types.Node(rec)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode yaml tree").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return writeError(path, err)
	}
	return nil
}

// ReadTreeFile loads a yaml export.
func ReadTreeFile(path string) (TreeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TreeFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("tree file not found").
			WithCause(err)
	}
	var doc TreeFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return TreeFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid tree file format").
			WithCause(err)
	}
	return doc, nil
}

func writeError(path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to write " + path).
		WithCause(err)
}

var _ ports.TreeExportPort = TSVTreeWriter{}
var _ ports.TreeExportPort = YAMLTreeWriter{}
