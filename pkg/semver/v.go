package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type (
	// V is structured semantic version representation
	V struct {
		Major, Minor, Patch uint
		PreRelease          string
		BuildMetadata       []string
	}
)

// ErrInvalidVersion - returns by Parse for malformed version string.
var ErrInvalidVersion = errors.New("semver.Parse: invalid version")

func (v V) String() string {
	buf := strings.Builder{}
	buf.WriteString(strconv.FormatUint(uint64(v.Major), 10))
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatUint(uint64(v.Minor), 10))
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatUint(uint64(v.Patch), 10))
	if v.PreRelease != "" {
		buf.WriteByte('-')
		buf.WriteString(v.PreRelease)
	}
	if len(v.BuildMetadata) > 0 {
		buf.WriteByte('+')
		buf.WriteString(strings.Join(v.BuildMetadata, "."))
	}

	return buf.String()
}

// Parse - parses version in MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] form, leading "v" is allowed.
// It is used to check version injected at build time with -ldflags.
func Parse(s string) (V, error) {
	v := V{}
	s = strings.TrimPrefix(s, "v")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		if i == len(s)-1 {
			return V{}, fmt.Errorf("%w %q: empty build metadata", ErrInvalidVersion, s)
		}
		v.BuildMetadata = strings.Split(s[i+1:], ".")
		s = s[:i]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		if i == len(s)-1 {
			return V{}, fmt.Errorf("%w %q: empty pre-release", ErrInvalidVersion, s)
		}
		v.PreRelease = s[i+1:]
		s = s[:i]
	}
	core := strings.Split(s, ".")
	if len(core) != 3 {
		return V{}, fmt.Errorf("%w %q: expected MAJOR.MINOR.PATCH", ErrInvalidVersion, s)
	}
	numbers := [3]uint{}
	for i, part := range core {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return V{}, fmt.Errorf("%w %q: %v", ErrInvalidVersion, s, err)
		}
		numbers[i] = uint(n)
	}
	v.Major, v.Minor, v.Patch = numbers[0], numbers[1], numbers[2]
	return v, nil
}
