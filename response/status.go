package response

import "github.com/adamwoolhether/rawhttp/errs"

// StatusClass is the first digit of a status code.
type StatusClass int

const (
	Informational StatusClass = iota + 1
	Success
	Redirection
	ClientError
	ServerError
)

var classNames = map[StatusClass]string{
	Informational: "Informational",
	Success:       "Success",
	Redirection:   "Redirection",
	ClientError:   "ClientError",
	ServerError:   "ServerError",
}

func (c StatusClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}

	return "Unknown"
}

// ClassOf classifies code. Codes outside 100-599 fail with
// errs.ErrUnknownStatusClass.
func ClassOf(code int) (StatusClass, error) {
	if code < 100 || code > 599 {
		return 0, errs.New(errs.ErrUnknownStatusClass, "status code %d", code)
	}

	return StatusClass(code / 100), nil
}
