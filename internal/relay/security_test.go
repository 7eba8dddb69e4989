package relay

import (
	"testing"

	"github.com/danmuck/drawembed/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServerTransport(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "development default", cfg: Config{}, want: nil},
		{name: "unknown mode", cfg: Config{SecurityMode: "paranoid"}, want: ErrInvalidSecurityMode},
		{name: "production without tls", cfg: Config{SecurityMode: "PRODUCTION", Token: "t"}, want: ErrTLSRequired},
		{
			name: "production without token",
			cfg:  Config{SecurityMode: SecurityModeProduction, TLS: TLSConfig{Enabled: true, CertFile: "c", KeyFile: "k"}},
			want: ErrTokenRequired,
		},
		{
			name: "tls without cert",
			cfg:  Config{TLS: TLSConfig{Enabled: true, KeyFile: "k"}},
			want: ErrTLSCertFileRequired,
		},
		{
			name: "tls without key",
			cfg:  Config{TLS: TLSConfig{Enabled: true, CertFile: "c"}},
			want: ErrTLSKeyFileRequired,
		},
		{
			name: "production complete",
			cfg: Config{
				SecurityMode: SecurityModeProduction,
				Token:        "t",
				TLS:          TLSConfig{Enabled: true, CertFile: "c", KeyFile: "k"},
			},
			want: nil,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.ValidateServerTransport()
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
