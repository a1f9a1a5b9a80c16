package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	r.Header.Set("X-Forwarded-For", "1.1.1.1")
	assert.Equal(t, "10.1.2.3", RealClientIP(r))

	r.RemoteAddr = "10.1.2.3"
	assert.Equal(t, "10.1.2.3", RealClientIP(r))

	r.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", RealClientIP(r))
}

func TestForwardedClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		want      string
	}{
		{"first forwarded hop", "203.0.113.7, 10.0.0.1", "198.51.100.2", "203.0.113.7"},
		{"real ip header", "", "198.51.100.2", "198.51.100.2"},
		{"blank forwarded falls through", " ,10.0.0.1", "", "192.0.2.10"},
		{"remote addr", "", "", "192.0.2.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = "192.0.2.10:1234"
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ForwardedClientIP(r))
		})
	}
}
