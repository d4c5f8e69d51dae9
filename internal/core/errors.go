package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// DuplicateNodeError reports a second record for an identifier that is
// already present while the fail policy is in effect.
type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node: %s", e.ID)
}

func (e *DuplicateNodeError) Unwrap() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeAlreadyExists).
		WithMsg(e.Error())
}

// MissingRootError reports that the declared root never appeared in the
// record stream and root synthesis was disabled.
type MissingRootError struct {
	RootID string
}

func (e *MissingRootError) Error() string {
	return fmt.Sprintf("root node not found: %s", e.RootID)
}

func (e *MissingRootError) Unwrap() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(e.Error())
}

// CyclicTaxonomyError names the node that was revisited while following
// parent links towards the root.
type CyclicTaxonomyError struct {
	ID string
}

func (e *CyclicTaxonomyError) Error() string {
	return fmt.Sprintf("cyclic taxonomy at node: %s", e.ID)
}

func (e *CyclicTaxonomyError) Unwrap() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(e.Error())
}

type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node: %s", e.ID)
}

func (e *UnknownNodeError) Unwrap() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(e.Error())
}
