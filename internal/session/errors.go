package session

import (
	"errors"
	"fmt"
)

// The session error taxonomy. ErrSession is the base kind; the others
// wrap it so errors.Is(err, ErrSession) matches any of them.
var (
	// ErrSession is the base error for all session failures.
	ErrSession = errors.New("session error")

	// ErrNotStarted is returned by gated operations invoked before
	// Start (or after Quit).
	ErrNotStarted = fmt.Errorf("%w: no session active, call Start first", ErrSession)

	// ErrPlatformUnsupported is returned by Start on an operating
	// system the exec pinger has no argument table for.
	ErrPlatformUnsupported = fmt.Errorf("%w: platform unsupported", ErrSession)

	// ErrMissingCommand is returned by Start when the ping command
	// cannot be located or produces no output.
	ErrMissingCommand = fmt.Errorf("%w: required command missing", ErrSession)

	// ErrInternal flags states that should be unreachable. Kept as an
	// explicit invariant-violation signal rather than a panic.
	ErrInternal = fmt.Errorf("%w: internal invariant violated", ErrSession)
)
