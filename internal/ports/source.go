package ports

import (
	"context"

	"taxtree/internal/types"
)

// RecordSource is the capability every taxonomy provider offers to the
// engine: a declared root identifier and a finite stream of records.
//
// Records calls yield once per record in whatever order the provider
// stores them. A non-nil error from yield aborts the stream and is
// returned unchanged.
type RecordSource interface {
	RootID() string
	Records(ctx context.Context, yield func(types.Record) error) error
}

// SourceOpenerPort turns a provider kind and an input location into a
// RecordSource.
type SourceOpenerPort interface {
	Open(ctx context.Context, provider types.ProviderKind, input string, rootID string) (RecordSource, error)
}
