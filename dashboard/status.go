package dashboard

import "fmt"

// Status is the loading status of the dashboard.
type Status int

const (
	Idle    Status = iota // nothing requested yet
	Loading               // a refresh is in flight
	Success               // the last refresh succeeded
	Error                 // the last refresh failed
)

var statusNames = []string{"idle", "loading", "success", "error"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}
