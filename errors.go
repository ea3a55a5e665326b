package kwmatch

import (
	"errors"

	"github.com/corey/kwmatch/internal/domain/pattern"
	"github.com/corey/kwmatch/internal/ports"
)

// Errors returned by Build and Find. Test with errors.Is; returned errors
// carry context such as the offending pattern.
var (
	// ErrNotBuilt is returned by Find before any successful Build.
	ErrNotBuilt = errors.New("matcher not built; call Build first")

	// ErrEmptyPattern: a pattern string was empty.
	ErrEmptyPattern = pattern.ErrEmptyPattern

	// ErrMissingPositiveTerm: in logic mode, a pattern had no usable term before the first '~'.
	ErrMissingPositiveTerm = pattern.ErrMissingPositiveTerm

	// ErrEmptyVocabulary: Build was given no patterns.
	ErrEmptyVocabulary = ports.ErrEmptyVocabulary

	// ErrAutomatonBuild: the term automaton could not be constructed.
	ErrAutomatonBuild = ports.ErrAutomatonBuild
)
