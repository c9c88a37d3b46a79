package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigErrorMessage(t *testing.T) {
	tests := []struct {
		name  string
		field string
		err   error
		want  string
	}{
		{
			name:  "with field",
			field: "server.port",
			err:   errors.New("must be between 1 and 65535"),
			want:  "config error in server.port: must be between 1 and 65535",
		},
		{
			name: "without field",
			err:  errors.New("failed to load config"),
			want: "config error: failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewConfigError(tt.field, tt.err).Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := NewConfigError("", fmt.Errorf("failed to load config: %w", cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should see through ConfigError to the cause")
	}
}

func TestCommandErrorMessage(t *testing.T) {
	err := NewCommandError("run", errors.New("listen tcp: address in use"))

	want := "run: listen tcp: address in use"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("query failed")
	err := NewCommandError("usage", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should see through CommandError to the cause")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatal("errors.As() should match *CommandError")
	}
	if cmdErr.Command != "usage" {
		t.Errorf("Command = %q, want %q", cmdErr.Command, "usage")
	}
}
