package registry

import (
	"fmt"

	"github.com/vk/picklerun/internal/loc"
)

// DuplicateStepError reports two registrations of the same pattern text.
// Both locations are carried so the collision can be pointed at, not just
// named.
type DuplicateStepError struct {
	Pattern string
	First   loc.Location
	Second  loc.Location
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("duplicate step definition for pattern %q: first registered at %s, again at %s",
		e.Pattern, e.First, e.Second)
}

// VariadicStepError reports a handler whose arity cannot be determined
// statically.
type VariadicStepError struct {
	Pattern  string
	Location loc.Location
}

func (e *VariadicStepError) Error() string {
	return fmt.Sprintf("step handler for pattern %q at %s is variadic; handlers must declare a fixed parameter list",
		e.Pattern, e.Location)
}

// InvalidHandlerError reports a handler value the runtime cannot dispatch
// to: not a function, or with an unsupported return shape.
type InvalidHandlerError struct {
	Pattern  string
	Location loc.Location
	Reason   string
}

func (e *InvalidHandlerError) Error() string {
	return fmt.Sprintf("invalid step handler for pattern %q at %s: %s", e.Pattern, e.Location, e.Reason)
}
