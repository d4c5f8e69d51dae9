package adapters

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

const gtdbReleaseBase = "https://data.gtdb.ecogenomic.org/releases/latest/"

var providerProfiles = map[types.ProviderKind]types.ProviderProfile{
	types.ProviderNCBI: {
		Kind:        types.ProviderNCBI,
		Description: "NCBI taxdump (directory with nodes.dmp and names.dmp, or taxdump.tar.gz)",
		RootID:      ncbiRootID,
		URLs:        []string{"https://ftp.ncbi.nlm.nih.gov/pub/taxonomy/" + ncbiArchiveFile},
		Options: types.BuildOptions{
			RootID:          ncbiRootID,
			OrphanPolicy:    types.OrphanExclude,
			DuplicatePolicy: types.DuplicateFail,
		},
	},
	types.ProviderGTDB: {
		Kind:        types.ProviderGTDB,
		Description: "GTDB taxonomy tsv files, comma separated",
		RootID:      gtdbRootID,
		URLs: []string{
			gtdbReleaseBase + "bac120_taxonomy.tsv.gz",
			gtdbReleaseBase + "ar53_taxonomy.tsv.gz",
		},
		Options: types.BuildOptions{
			RootID:          gtdbRootID,
			OrphanPolicy:    types.OrphanExclude,
			DuplicatePolicy: types.DuplicateFail,
		},
	},
	types.ProviderTSV: {
		Kind:        types.ProviderTSV,
		Description: "tab separated id, parent, name, rank",
		Options: types.BuildOptions{
			OrphanPolicy:    types.OrphanExclude,
			DuplicatePolicy: types.DuplicateFail,
		},
	},
	types.ProviderSFGA: {
		Kind:        types.ProviderSFGA,
		Description: "SFGA sqlite archive; top level taxa hang below a synthesized root",
		RootID:      sfgaRootID,
		Options: types.BuildOptions{
			RootID:          sfgaRootID,
			OrphanPolicy:    types.OrphanReparent,
			DuplicatePolicy: types.DuplicateFail,
			SynthesizeRoot:  true,
		},
	},
	types.ProviderSQLite: {
		Kind:        types.ProviderSQLite,
		Description: "sqlite file written by the sqlite export",
		Options: types.BuildOptions{
			OrphanPolicy:    types.OrphanExclude,
			DuplicatePolicy: types.DuplicateFail,
		},
	},
}

// ProviderProfiles lists the known providers ordered by kind.
func ProviderProfiles() []types.ProviderProfile {
	out := make([]types.ProviderProfile, 0, len(providerProfiles))
	for _, profile := range providerProfiles {
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Kind < out[j].Kind
	})
	return out
}

func LookupProviderProfile(kind types.ProviderKind) (types.ProviderProfile, error) {
	profile, ok := providerProfiles[kind]
	if !ok {
		return types.ProviderProfile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown provider: %s", kind))
	}
	return profile, nil
}

// SourceOpenerAdapter maps a provider kind to its record source.
type SourceOpenerAdapter struct{}

func NewSourceOpenerAdapter() SourceOpenerAdapter {
	return SourceOpenerAdapter{}
}

func (SourceOpenerAdapter) Open(ctx context.Context, provider types.ProviderKind, input string, rootID string) (ports.RecordSource, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("input is required")
	}
	switch provider {
	case types.ProviderNCBI:
		return NewNCBIDumpSource(input, rootID), nil
	case types.ProviderGTDB:
		if rootID != "" && rootID != gtdbRootID {
			return rootOverride{RecordSource: NewGTDBSource(input), root: rootID}, nil
		}
		return NewGTDBSource(input), nil
	case types.ProviderTSV:
		if rootID == "" {
			root, err := sniffTSVRoot(input)
			if err != nil {
				return nil, err
			}
			rootID = root
		}
		return NewTSVSource(input, rootID), nil
	case types.ProviderSFGA:
		return NewSFGASource(input, rootID), nil
	case types.ProviderSQLite:
		return OpenSQLiteTreeSource(ctx, input, rootID)
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown provider: %s", provider))
	}
}

type rootOverride struct {
	ports.RecordSource
	root string
}

func (r rootOverride) RootID() string {
	return r.root
}

// sniffTSVRoot reads the "# root=" header written by TSVTreeWriter.
func sniffTSVRoot(path string) (string, error) {
	reader, err := openInput(path)
	if err != nil {
		return "", err
	}
	defer reader.Close()
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	if scanner.Scan() {
		if root, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "# root="); ok && root != "" {
			return root, nil
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("tsv input has no root header; set the root id explicitly")
}

var _ ports.SourceOpenerPort = SourceOpenerAdapter{}
