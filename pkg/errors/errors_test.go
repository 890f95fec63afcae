package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code only",
			err:  New(ErrCodeInternal, "boom"),
			want: "INTERNAL_ERROR: boom",
		},
		{
			name: "module and param",
			err:  Invalid(ErrCodeInvalidMount, "stairs", "mount", "unknown mount %q", "side"),
			want: `stairs: mount: INVALID_MOUNT: unknown mount "side"`,
		},
		{
			name: "module only",
			err:  &Error{Code: ErrCodeDegenerate, Module: "stairs", Message: "no steps"},
			want: "stairs: DEGENERATE_GEOMETRY: no steps",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapAndIs(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Wrap(ErrCodeNotFound, cause, "material catalog %s", "woods.toml")

	if !Is(err, ErrCodeNotFound) {
		t.Error("Is(ErrCodeNotFound) = false, want true")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is(ErrCodeInternal) = true, want false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Error() = %q, should mention the cause", err.Error())
	}

	outer := fmt.Errorf("loading: %w", err)
	if GetCode(outer) != ErrCodeNotFound {
		t.Errorf("GetCode = %q, want %q", GetCode(outer), ErrCodeNotFound)
	}
}

func TestGetParamAndUserMessage(t *testing.T) {
	err := Invalid(ErrCodeUnitConfusion, "stairs", "totalRise", "%.0f looks like millimeters", 2800.0)
	if GetParam(err) != "totalRise" {
		t.Errorf("GetParam = %q, want totalRise", GetParam(err))
	}
	if got := UserMessage(err); got != "stairs: totalRise: 2800 looks like millimeters" {
		t.Errorf("UserMessage = %q", got)
	}

	plain := fmt.Errorf("plain")
	if GetCode(plain) != "" || GetParam(plain) != "" {
		t.Error("plain errors carry no code or param")
	}
	if UserMessage(plain) != "plain" {
		t.Errorf("UserMessage(plain) = %q", UserMessage(plain))
	}
}
