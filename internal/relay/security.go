package relay

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSecurityMode = errors.New("relay: invalid security mode")
	ErrTLSRequired         = errors.New("relay: tls required")
	ErrTLSCertFileRequired = errors.New("relay: tls cert file required")
	ErrTLSKeyFileRequired  = errors.New("relay: tls key file required")
	ErrTokenRequired       = errors.New("relay: token required")
)

func NormalizeSecurityMode(mode SecurityMode) SecurityMode {
	if strings.TrimSpace(string(mode)) == "" {
		return SecurityModeDevelopment
	}
	return SecurityMode(strings.ToLower(strings.TrimSpace(string(mode))))
}

// ValidateServerTransport checks the listener settings against the security
// mode. Production requires TLS and a relay token.
func (c Config) ValidateServerTransport() error {
	mode := NormalizeSecurityMode(c.SecurityMode)
	switch mode {
	case SecurityModeDevelopment, SecurityModeProduction:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSecurityMode, c.SecurityMode)
	}

	if mode == SecurityModeProduction {
		if !c.TLS.Enabled {
			return ErrTLSRequired
		}
		if strings.TrimSpace(c.Token) == "" {
			return ErrTokenRequired
		}
	}
	if c.TLS.Enabled {
		if strings.TrimSpace(c.TLS.CertFile) == "" {
			return ErrTLSCertFileRequired
		}
		if strings.TrimSpace(c.TLS.KeyFile) == "" {
			return ErrTLSKeyFileRequired
		}
	}
	return nil
}
