package cli

import "fmt"

type badArgError struct {
	flag   string
	value  string
	reason string
}

func (e badArgError) Error() string {
	return fmt.Sprintf("invalid --%s %q: %s", e.flag, e.value, e.reason)
}

func errBadArg(flag, value, reason string) error {
	return badArgError{flag: flag, value: value, reason: reason}
}
