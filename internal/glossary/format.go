package glossary

import (
	"fmt"
	"strings"
)

// maxListedAlternatives caps how many known values an issue message lists
// before summarizing the rest.
const maxListedAlternatives = 8

// FormatIssue renders one issue as a human-readable line. Each issue type
// gets its own lead sentence; step text, location, known alternatives, and
// the suggestion follow when present.
func FormatIssue(i Issue) string {
	var b strings.Builder

	switch i.Type {
	case IssueUnknownSubject:
		fmt.Fprintf(&b, "unknown subject %q", i.Value)
	case IssueUnknownVerb:
		fmt.Fprintf(&b, "unknown verb %q for interface type %q", i.Value, i.Scope)
	case IssueUnknownInterface:
		fmt.Fprintf(&b, "interface %q is not configured", i.Value)
	case IssueExtractionFailed:
		fmt.Fprintf(&b, "svo extraction failed: %s", i.Detail)
	case IssueProvisioningFailed:
		fmt.Fprintf(&b, "provisioning %q failed: %s", i.Value, i.Detail)
	default:
		fmt.Fprintf(&b, "%s: %q", i.Type, i.Value)
	}

	if i.StepText != "" {
		fmt.Fprintf(&b, " in step %q", i.StepText)
	}
	if !i.Location.IsZero() {
		fmt.Fprintf(&b, " (%s)", i.Location)
	}

	if len(i.Known) > 0 {
		listed := i.Known
		extra := 0
		if len(listed) > maxListedAlternatives {
			extra = len(listed) - maxListedAlternatives
			listed = listed[:maxListedAlternatives]
		}
		fmt.Fprintf(&b, "; known: %s", strings.Join(listed, ", "))
		if extra > 0 {
			fmt.Fprintf(&b, " (and %d more)", extra)
		}
	}

	if i.Suggestion != "" {
		fmt.Fprintf(&b, ". Did you mean %q?", i.Suggestion)
	}

	return b.String()
}
