package util

// CloneSlice clones slice with cloneSize.
// This function will use src length as the clone size if cloneSize is 0.
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}

// ParseUint parses an ASCII decimal number without allocating.
//
// It returns false if b is empty, contains a non-digit byte, or overflows uint64.
// Leading '+' or '-' signs are not accepted.
func ParseUint(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}

	var n uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if n > (1<<64-1-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}

	return n, true
}

// ParseInt parses an ASCII decimal number with an optional leading '-' without allocating.
func ParseInt(b []byte) (int64, bool) {
	neg := false
	if len(b) > 0 && b[0] == '-' {
		neg = true
		b = b[1:]
	}

	n, ok := ParseUint(b)
	if !ok {
		return 0, false
	}

	if neg {
		if n > 1<<63 {
			return 0, false
		}
		return -int64(n), true //nolint:gosec
	}

	if n > 1<<63-1 {
		return 0, false
	}

	return int64(n), true
}

// IsDigits reports whether b is non-empty and consists only of ASCII digits.
func IsDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
