package adapters

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

func collect(t *testing.T, source ports.RecordSource) []types.Record {
	t.Helper()
	var out []types.Record
	require.NoError(t, source.Records(t.Context(), func(rec types.Record) error {
		out = append(out, rec)
		return nil
	}))
	return out
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func gzipBytes(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

const ncbiNodes = "1\t|\t1\t|\tno rank\t|\t\t|\n" +
	"2\t|\t1\t|\tsuperkingdom\t|\tBA\t|\n" +
	"561\t|\t2\t|\tgenus\t|\t\t|\n" +
	"562\t|\t561\t|\tspecies\t|\tEC\t|\n"

const ncbiNames = "1\t|\troot\t|\t\t|\tscientific name\t|\n" +
	"2\t|\tBacteria\t|\tBacteria <bacteria>\t|\tscientific name\t|\n" +
	"2\t|\teubacteria\t|\t\t|\tgenbank common name\t|\n" +
	"561\t|\tEscherichia\t|\t\t|\tscientific name\t|\n" +
	"562\t|\tEscherichia coli\t|\t\t|\tscientific name\t|\n" +
	"562\t|\tE. coli\t|\t\t|\tcommon name\t|\n"

var ncbiWant = []types.Record{
	{ID: "1", ParentID: "1", Name: "root", Rank: "no rank"},
	{ID: "2", ParentID: "1", Name: "Bacteria", Rank: "superkingdom"},
	{ID: "561", ParentID: "2", Name: "Escherichia", Rank: "genus"},
	{ID: "562", ParentID: "561", Name: "Escherichia coli", Rank: "species"},
}

func TestTSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxa.tsv")
	writeFile(t, path, "# comment\n"+
		"1\t\troot\tno rank\n"+
		"\n"+
		"2\t1\tBacteria\tdomain\r\n"+
		"3\t2\n")
	source := NewTSVSource(path, "1")
	assert.Equal(t, "1", source.RootID())
	want := []types.Record{
		{ID: "1", Name: "root", Rank: "no rank"},
		{ID: "2", ParentID: "1", Name: "Bacteria", Rank: "domain"},
		{ID: "3", ParentID: "2"},
	}
	if diff := cmp.Diff(want, collect(t, source)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestTSVSourceMissingFile(t *testing.T) {
	err := NewTSVSource(filepath.Join(t.TempDir(), "nope.tsv"), "1").Records(t.Context(), func(types.Record) error { return nil })
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestNCBIDumpSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "nodes.dmp"), ncbiNodes)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "names.dmp.gz"), gzipBytes(t, ncbiNames), 0o644))

	source := NewNCBIDumpSource(dir, "")
	assert.Equal(t, "1", source.RootID())
	if diff := cmp.Diff(ncbiWant, collect(t, source)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestNCBIDumpSourceArchive(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	archive := tar.NewWriter(gz)
	for name, content := range map[string]string{"names.dmp": ncbiNames, "nodes.dmp": ncbiNodes, "readme.txt": "hi"} {
		require.NoError(t, archive.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}))
		_, err := archive.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, archive.Close())
	require.NoError(t, gz.Close())
	path := filepath.Join(t.TempDir(), "taxdump.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	if diff := cmp.Diff(ncbiWant, collect(t, NewNCBIDumpSource(path, "1"))); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestNCBIDumpSourceErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "nodes.dmp"), ncbiNodes)
	err := NewNCBIDumpSource(dir, "").Records(t.Context(), func(types.Record) error { return nil })
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	writeFile(t, filepath.Join(dir, "names.dmp"), "broken line\n")
	err = NewNCBIDumpSource(dir, "").Records(t.Context(), func(types.Record) error { return nil })
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestGTDBSource(t *testing.T) {
	dir := t.TempDir()
	bac := filepath.Join(dir, "bac.tsv")
	writeFile(t, bac, "GB_1\td__Bacteria;p__Pseudomonadota;c__Gammaproteobacteria;o__Enterobacterales;f__Enterobacteriaceae;g__Escherichia;s__Escherichia coli\n"+
		"GB_2\td__Bacteria;p__Pseudomonadota;c__Gammaproteobacteria;o__Enterobacterales;f__Enterobacteriaceae;g__Escherichia;s__Escherichia albertii\n")
	ar := filepath.Join(dir, "ar.tsv.gz")
	require.NoError(t, os.WriteFile(ar, gzipBytes(t, "GB_3\td__Archaea;p__;c__Thermoproteia\n"), 0o644))

	source := NewGTDBSource(bac + ", " + ar)
	assert.Equal(t, "1", source.RootID())
	records := collect(t, source)
	want := []types.Record{
		{ID: "1", Name: "root", Rank: "no rank"},
		{ID: "d__Bacteria", ParentID: "1", Name: "Bacteria", Rank: "domain"},
		{ID: "p__Pseudomonadota", ParentID: "d__Bacteria", Name: "Pseudomonadota", Rank: "phylum"},
		{ID: "c__Gammaproteobacteria", ParentID: "p__Pseudomonadota", Name: "Gammaproteobacteria", Rank: "class"},
		{ID: "o__Enterobacterales", ParentID: "c__Gammaproteobacteria", Name: "Enterobacterales", Rank: "order"},
		{ID: "f__Enterobacteriaceae", ParentID: "o__Enterobacterales", Name: "Enterobacteriaceae", Rank: "family"},
		{ID: "g__Escherichia", ParentID: "f__Enterobacteriaceae", Name: "Escherichia", Rank: "genus"},
		{ID: "s__Escherichia coli", ParentID: "g__Escherichia", Name: "Escherichia coli", Rank: "species"},
		{ID: "s__Escherichia albertii", ParentID: "g__Escherichia", Name: "Escherichia albertii", Rank: "species"},
		{ID: "d__Archaea", ParentID: "1", Name: "Archaea", Rank: "domain"},
		{ID: "c__Thermoproteia", ParentID: "d__Archaea", Name: "Thermoproteia", Rank: "class"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestGTDBSourceRejectsLinesWithoutLineage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tsv")
	writeFile(t, path, "just-an-accession\n")
	err := NewGTDBSource(path).Records(t.Context(), func(types.Record) error { return nil })
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestSFGASource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfga.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`
CREATE TABLE name (col__id TEXT PRIMARY KEY, col__scientific_name TEXT, col__rank_id TEXT);
CREATE TABLE taxon (col__id TEXT PRIMARY KEY, col__name_id TEXT, col__parent_id TEXT);
INSERT INTO name VALUES ('n1', 'Animalia', 'kingdom'), ('n2', 'Plantae', 'kingdom'), ('n3', 'Chordata', 'phylum');
INSERT INTO taxon VALUES ('t1', 'n1', NULL), ('t2', 'n2', ''), ('t3', 'n3', 't1'), ('t4', 'missing', 't3');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	source := NewSFGASource(path, "")
	assert.Equal(t, "root", source.RootID())
	want := []types.Record{
		{ID: "t1", Name: "Animalia", Rank: "kingdom"},
		{ID: "t2", Name: "Plantae", Rank: "kingdom"},
		{ID: "t3", ParentID: "t1", Name: "Chordata", Rank: "phylum"},
		{ID: "t4", ParentID: "t3"},
	}
	if diff := cmp.Diff(want, collect(t, source)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

var exported = []types.Record{
	{ID: "1", Name: "root", Rank: "no rank"},
	{ID: "2", ParentID: "1", Name: "Bacteria\tstrain", Rank: "domain"},
	{ID: "3", ParentID: "2", Name: "Escherichia", Rank: "genus"},
}

func TestSQLiteTreeStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tree.sqlite")
	require.NoError(t, NewSQLiteTreeStore().Export(path, "1", exported))
	// A second export replaces the file.
	require.NoError(t, NewSQLiteTreeStore().Export(path, "1", exported))

	source, err := OpenSQLiteTreeSource(t.Context(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "1", source.RootID())
	if diff := cmp.Diff(exported, collect(t, source)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}

	source, err = OpenSQLiteTreeSource(t.Context(), path, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", source.RootID())

	_, err = OpenSQLiteTreeSource(t.Context(), filepath.Join(t.TempDir(), "missing.sqlite"), "")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestTSVTreeWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.tsv")
	require.NoError(t, NewTSVTreeWriter().Export(path, "1", exported))

	source, err := NewSourceOpenerAdapter().Open(t.Context(), types.ProviderTSV, path, "")
	require.NoError(t, err)
	assert.Equal(t, "1", source.RootID())
	records := collect(t, source)
	require.Len(t, records, 3)
	assert.Equal(t, "Bacteria strain", records[1].Name)
	assert.Equal(t, exported[2], records[2])
}

func TestYAMLTreeWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, NewYAMLTreeWriter().Export(path, "1", exported))
	doc, err := ReadTreeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1", doc.RootID)
	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, types.Node{ID: "3", ParentID: "2", Name: "Escherichia", Rank: "genus"}, doc.Nodes[2])
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "root_id: \"1\""))
}

func TestReportFileAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "build.yaml")
	report := types.BuildReport{
		Provider: types.ProviderNCBI,
		Input:    "taxdump",
		Options: types.BuildOptions{
			RootID:          "1",
			OrphanPolicy:    types.OrphanExclude,
			DuplicatePolicy: types.DuplicateFail,
		},
		Diagnostics: types.Diagnostics{Records: 4, Orphans: []string{"9"}},
		Stats:       types.Stats{Nodes: 3, Leaves: 1, MaxDepth: 2, Ranks: map[string]int{"genus": 1}},
		CreatedAt:   "2026-01-02T03:04:05Z",
	}
	adapter := NewReportFileAdapter()
	require.NoError(t, adapter.WriteReport(path, report))
	got, err := adapter.ReadReport(path)
	require.NoError(t, err)
	if diff := cmp.Diff(report, got); diff != "" {
		t.Fatalf("unexpected report (-want +got):\n%s", diff)
	}

	_, err = adapter.ReadReport(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	require.Error(t, adapter.WriteReport("", report))
}

func TestSourceOpener(t *testing.T) {
	opener := NewSourceOpenerAdapter()
	tests := []struct {
		name     string
		provider types.ProviderKind
		input    string
		root     string
		wantRoot string
		wantErr  bool
	}{
		{name: "ncbi default root", provider: types.ProviderNCBI, input: "dump", wantRoot: "1"},
		{name: "gtdb root override", provider: types.ProviderGTDB, input: "a.tsv", root: "d__Bacteria", wantRoot: "d__Bacteria"},
		{name: "sfga default root", provider: types.ProviderSFGA, input: "x.sqlite", wantRoot: "root"},
		{name: "tsv explicit root", provider: types.ProviderTSV, input: "x.tsv", root: "7", wantRoot: "7"},
		{name: "unknown provider", provider: "itis", input: "x", wantErr: true},
		{name: "empty input", provider: types.ProviderNCBI, input: " ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := opener.Open(t.Context(), tt.provider, tt.input, tt.root)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoot, source.RootID())
		})
	}
}

func TestSourceOpenerTSVWithoutRootHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.tsv")
	writeFile(t, path, "1\t\troot\tno rank\n")
	_, err := NewSourceOpenerAdapter().Open(t.Context(), types.ProviderTSV, path, "")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestProviderProfiles(t *testing.T) {
	profiles := ProviderProfiles()
	var kinds []types.ProviderKind
	for _, profile := range profiles {
		kinds = append(kinds, profile.Kind)
		assert.NotEmpty(t, profile.Options.OrphanPolicy)
		assert.NotEmpty(t, profile.Options.DuplicatePolicy)
	}
	want := []types.ProviderKind{types.ProviderGTDB, types.ProviderNCBI, types.ProviderSFGA, types.ProviderSQLite, types.ProviderTSV}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("unexpected providers (-want +got):\n%s", diff)
	}
	sfga, err := LookupProviderProfile(types.ProviderSFGA)
	require.NoError(t, err)
	assert.True(t, sfga.Options.SynthesizeRoot)
	assert.Equal(t, types.OrphanReparent, sfga.Options.OrphanPolicy)
	_, err = LookupProviderProfile("itis")
	require.Error(t, err)
}

func TestSourcesStopOnYieldError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxa.tsv")
	writeFile(t, path, "1\t\troot\tno rank\n2\t1\tB\tdomain\n")
	stop := errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("stop")
	calls := 0
	err := NewTSVSource(path, "1").Records(context.Background(), func(types.Record) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
