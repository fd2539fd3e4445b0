package request

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/rawhttp/errs"
)

func TestResolve(t *testing.T) {
	testCases := map[string]struct {
		url    string
		exp    Location
		expURI string
	}{
		"noPath": {
			url:    "http://purple.com:2365",
			exp:    Location{Host: "purple.com", Port: 2365},
			expURI: "/",
		},
		"rootPath": {
			url:    "http://purple.com/",
			exp:    Location{Host: "purple.com", Port: 80, Rest: "/"},
			expURI: "/",
		},
		"queryAndFragment": {
			url:    "https://www.google.co.uk/search?q=term#q=term&start=10",
			exp:    Location{Secure: true, Host: "www.google.co.uk", Port: 443, Rest: "/search?q=term#q=term&start=10"},
			expURI: "/search?q=term#q=term&start=10",
		},
		"fragmentOnly": {
			url:    "http://purple.com#top",
			exp:    Location{Host: "purple.com", Port: 80, Rest: "#top"},
			expURI: "/#top",
		},
		"colonInPath": {
			url:    "http://purple.com/a:1",
			exp:    Location{Host: "purple.com", Port: 80, Rest: "/a:1"},
			expURI: "/a:1",
		},
		"idnaHost": {
			url:    "http://bücher.example/",
			exp:    Location{Host: "xn--bcher-kva.example", Port: 80, Rest: "/"},
			expURI: "/",
		},
		"ipv6": {
			url:    "http://[2001:db8::1]:8080",
			exp:    Location{Host: "[2001:db8::1]", Port: 8080},
			expURI: "/",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := Resolve(tc.url)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}

			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("location mismatch (-want +got):\n%s", diff)
			}
			if uri := got.RequestURI(); uri != tc.expURI {
				t.Errorf("exp request uri %q, got %q", tc.expURI, uri)
			}
		})
	}
}

func TestSplitPort(t *testing.T) {
	testCases := []struct {
		authority string
		host      string
		port      int
	}{
		{"example.com", "example.com", 0},
		{"example.com:8080", "example.com", 8080},
		{"example.com:", "example.com", 0},
		{"[::1]", "[::1]", 0},
		{"[::1]:443", "[::1]", 443},
		{"[fe80::1]", "[fe80::1]", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.authority, func(t *testing.T) {
			host, port, err := splitPort(tc.authority)
			if err != nil {
				t.Fatalf("split port: %v", err)
			}
			if host != tc.host || port != tc.port {
				t.Errorf("exp (%q, %d), got (%q, %d)", tc.host, tc.port, host, port)
			}
		})
	}
}

func TestSplitPort_Invalid(t *testing.T) {
	for _, authority := range []string{"h:abc", "example.com:80a", "[::1]:abc", "example.com:0", "example.com:65536"} {
		t.Run(authority, func(t *testing.T) {
			host, port, err := splitPort(authority)
			if !errors.Is(err, errs.ErrInvalidURL) {
				t.Fatalf("exp ErrInvalidURL, got (%q, %d, %v)", host, port, err)
			}
		})
	}
}
