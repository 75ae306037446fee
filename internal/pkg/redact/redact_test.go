package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "local_gt_2", in: "foobar@example.com", want: "fo***@example.com"},
		{name: "local_len_2", in: "ab@ex.com", want: "***@ex.com"},
		{name: "no_at", in: "no-at-here", want: "***"},
		{name: "multiple_at", in: "a@b@c", want: "***"},
		{name: "empty", in: "", want: "***"},
		{name: "unicode_local", in: "юзер@пример.рф", want: "юз***@пример.рф"},
		{name: "empty_local", in: "@domain", want: "***@domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestPhone_KeepsLastTwoDigits(t *testing.T) {
	t.Parallel()

	require.Equal(t, "***67", Phone("+79991234567"))
	require.Equal(t, "***", Phone("+12"))
	require.Equal(t, "***", Phone(""))
}

func TestDestination_PicksRuleByShape(t *testing.T) {
	t.Parallel()

	require.Equal(t, "us***@example.com", Destination("user@example.com"))
	require.Equal(t, "***67", Destination("+79991234567"))
}

func TestCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_CODE]", Code())
}
