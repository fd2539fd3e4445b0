package request

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/adamwoolhether/rawhttp/errs"
)

const (
	schemeHTTP  = "http://"
	schemeHTTPS = "https://"

	defaultPortHTTP  = 80
	defaultPortHTTPS = 443
)

// Location is a URL split into the pieces needed to dial and to write
// a request line.
type Location struct {
	Secure bool
	Host   string
	Port   int
	// Rest is the raw path, query and fragment following the host.
	// It is empty when the URL ends at the authority.
	Rest string
}

// Resolve splits rawURL into a Location. Only http:// and https:// URLs
// are accepted. Nothing is looked up on the network.
func Resolve(rawURL string) (Location, error) {
	var loc Location

	switch {
	case hasPrefixFold(rawURL, schemeHTTPS):
		loc.Secure = true
		rawURL = rawURL[len(schemeHTTPS):]
	case hasPrefixFold(rawURL, schemeHTTP):
		rawURL = rawURL[len(schemeHTTP):]
	default:
		return Location{}, errs.New(errs.ErrInvalidURL, "%q: scheme must be http or https", rawURL)
	}

	authority := rawURL
	if i := strings.IndexAny(rawURL, "/?#"); i >= 0 {
		authority, loc.Rest = rawURL[:i], rawURL[i:]
	}

	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}

	host, port, err := splitPort(authority)
	if err != nil {
		return Location{}, err
	}
	if host == "" {
		return Location{}, errs.New(errs.ErrInvalidURL, "empty host")
	}

	if port == 0 {
		port = defaultPortHTTP
		if loc.Secure {
			port = defaultPortHTTPS
		}
	}

	if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return Location{}, errs.Wrap(errs.ErrInvalidURL, err, "host "+host)
		}
		host = ascii
	}

	loc.Host = host
	loc.Port = port

	return loc, nil
}

// Target returns the dial target for the location.
func (l Location) Target() Target {
	hostPort := net.JoinHostPort(strings.Trim(l.Host, "[]"), strconv.Itoa(l.Port))
	if l.Secure {
		return Secure(hostPort)
	}

	return Unsecure(hostPort)
}

// RequestURI returns the request-target written on the request line.
func (l Location) RequestURI() string {
	switch {
	case l.Rest == "":
		return "/"
	case l.Rest[0] != '/':
		return "/" + l.Rest
	default:
		return l.Rest
	}
}

// splitPort splits an authority at the last colon that is followed only
// by digits. A zero port means none was given.
func splitPort(authority string) (string, int, error) {
	i := strings.LastIndexByte(authority, ':')
	if i < 0 {
		return authority, 0, nil
	}

	digits := authority[i+1:]
	if digits == "" {
		return authority[:i], 0, nil
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			if strings.HasPrefix(authority, "[") && strings.HasSuffix(authority, "]") {
				return authority, 0, nil
			}
			return "", 0, errs.New(errs.ErrInvalidURL, "port %q is not numeric", digits)
		}
	}

	port, err := strconv.Atoi(digits)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, errs.New(errs.ErrInvalidURL, "port %q out of range", digits)
	}

	return authority[:i], port, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
