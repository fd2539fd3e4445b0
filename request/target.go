package request

// Target is where a request is dispatched: either [Secure] or [Unsecure].
// Both variants carry "host:port". Two targets are equal under == only when
// both the variant and the address match.
type Target interface {
	// HostPort returns the "host:port" address to dial.
	HostPort() string
	target()
}

// Secure is a target reached over TLS.
type Secure string

// Unsecure is a target reached over plain TCP.
type Unsecure string

func (s Secure) HostPort() string { return string(s) }
func (s Secure) String() string   { return "https://" + string(s) }
func (Secure) target()            {}

func (u Unsecure) HostPort() string { return string(u) }
func (u Unsecure) String() string   { return "http://" + string(u) }
func (Unsecure) target()            {}
