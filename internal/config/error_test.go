package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	const path = "/etc/mlparse/config.toml"
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "empty",
			err:  &Error{Path: path},
			want: "",
		},
		{
			name: "missing vars",
			err:  &Error{Path: path, Missing: []string{"API_KEY", "SECRET"}},
			want: path + ": missing environment variables: API_KEY, SECRET",
		},
		{
			name: "validation",
			err:  &Error{Path: path, Errors: []string{"enrich.max_attempts: must be at least 1, got 0", "output.path: required"}},
			want: path + ": validation failed: enrich.max_attempts: must be at least 1, got 0; output.path: required",
		},
		{
			name: "both",
			err:  &Error{Path: path, Missing: []string{"API_KEY"}, Errors: []string{"log.level: invalid"}},
			want: path + ": missing environment variables: API_KEY; validation failed: log.level: invalid",
		},
		{
			name: "no path",
			err:  &Error{Errors: []string{"output.path: required"}},
			want: "validation failed: output.path: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.want != "", tt.err.HasErrors())
		})
	}
}
