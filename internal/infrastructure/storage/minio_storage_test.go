package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinioEndpoint(t *testing.T) {
	tests := []struct {
		raw        string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"minio.internal:9000/", true, "minio.internal:9000", true},
		{"http://minio:9000", true, "minio:9000", false},
		{"https://s3.example.com", false, "s3.example.com", true},
	}
	for _, tt := range tests {
		host, secure, err := minioEndpoint(tt.raw, tt.useSSL)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.wantHost, host, tt.raw)
		assert.Equal(t, tt.wantSecure, secure, tt.raw)
	}

	_, _, err := minioEndpoint("  ", false)
	require.Error(t, err)
}
