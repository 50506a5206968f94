package fix

import "bytes"

// Version identifies a supported FIX protocol version.
type Version int

const (
	// UnknownVersion is the zero value and is never accepted on the wire.
	UnknownVersion Version = iota
	// FIX44 is FIX 4.4, BeginString "FIX.4.4".
	FIX44
	// FIX50 is FIX 5.0 carried over the FIXT.1.1 session layer, BeginString "FIXT.1.1".
	FIX50
)

var (
	beginStringFIX44 = []byte("FIX.4.4")
	beginStringFIX50 = []byte("FIXT.1.1")
)

// BeginString returns the tag 8 value for the version, or an empty string for an unknown version.
func (v Version) BeginString() string {
	switch v {
	case FIX44:
		return string(beginStringFIX44)
	case FIX50:
		return string(beginStringFIX50)
	default:
		return ""
	}
}

// DefaultApplVerID returns the tag 1137 value a FIXT.1.1 Logon must carry,
// or an empty string when the version does not use one.
func (v Version) DefaultApplVerID() string {
	if v == FIX50 {
		return "7"
	}

	return ""
}

// IsValid reports whether v is a supported version.
func (v Version) IsValid() bool {
	return v == FIX44 || v == FIX50
}

// String returns a human readable version name.
func (v Version) String() string {
	switch v {
	case FIX44:
		return "FIX.4.4"
	case FIX50:
		return "FIX.5.0"
	default:
		return "unknown"
	}
}

func (v Version) beginString() []byte {
	switch v {
	case FIX44:
		return beginStringFIX44
	case FIX50:
		return beginStringFIX50
	default:
		return nil
	}
}

// ParseVersion maps a BeginString value to a Version.
func ParseVersion(beginString []byte) (Version, error) {
	switch {
	case bytes.Equal(beginString, beginStringFIX44):
		return FIX44, nil
	case bytes.Equal(beginString, beginStringFIX50):
		return FIX50, nil
	default:
		return UnknownVersion, ErrUnsupportedVersion
	}
}
