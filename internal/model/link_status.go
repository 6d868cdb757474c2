package model

import "fmt"

// LinkStatus is the classification of a single link check.
type LinkStatus int

const (
	// LinkStatusOK means the link answered successfully.
	LinkStatusOK LinkStatus = iota

	// LinkStatusNotFound means the link is missing or unreachable.
	LinkStatusNotFound

	// LinkStatusRedirect means the link answered with a redirect.
	LinkStatusRedirect

	// LinkStatusInvalid means the link is not a syntactically valid URL.
	// No network operation is attempted for such links.
	LinkStatusInvalid
)

// String returns the canonical name of the status.
func (s LinkStatus) String() string {
	switch s {
	case LinkStatusOK:
		return "OK"
	case LinkStatusNotFound:
		return "NOT_FOUND"
	case LinkStatusRedirect:
		return "REDIRECT"
	case LinkStatusInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// IsBroken reports whether the status counts as a broken link.
func (s LinkStatus) IsBroken() bool {
	return s == LinkStatusNotFound || s == LinkStatusInvalid
}

// MarshalText encodes the status as its name, so JSON reports carry
// "NOT_FOUND" rather than 1.
func (s LinkStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *LinkStatus) UnmarshalText(text []byte) error {
	status, err := ParseLinkStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseLinkStatus converts a status name back into a LinkStatus.
func ParseLinkStatus(name string) (LinkStatus, error) {
	switch name {
	case "OK":
		return LinkStatusOK, nil
	case "NOT_FOUND":
		return LinkStatusNotFound, nil
	case "REDIRECT":
		return LinkStatusRedirect, nil
	case "INVALID":
		return LinkStatusInvalid, nil
	default:
		return 0, fmt.Errorf("unknown link status %q", name)
	}
}

// AllLinkStatuses lists every status in display order.
func AllLinkStatuses() []LinkStatus {
	return []LinkStatus{
		LinkStatusOK,
		LinkStatusRedirect,
		LinkStatusNotFound,
		LinkStatusInvalid,
	}
}
