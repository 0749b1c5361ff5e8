package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipients(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["u1","u2"]`, []string{"u1", "u2"}},
		{"json array with blanks", `["u1",""," u2 "]`, []string{"u1", "u2"}},
		{"set literal", `{u1, u2}`, []string{"u1", "u2"}},
		{"set literal single quotes", `{'u1', 'u2'}`, []string{"u1", "u2"}},
		{"set literal double quotes", `{"u1","u2"}`, []string{"u1", "u2"}},
		{"bare id", `u1`, []string{"u1"}},
		{"empty", ``, nil},
		{"empty array", `[]`, nil},
		{"empty set", `{}`, nil},
		{"whitespace", `   `, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseRecipients(c.raw)
			require.NoError(t, err)
			if len(c.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func TestParseRecipientsGivesUpCleanly(t *testing.T) {
	got, err := ParseRecipients(`[not json at all]{`)
	assert.ErrorIs(t, err, ErrUnparseable)
	assert.Empty(t, got)
}

func TestParseRecipientsMalformedArray(t *testing.T) {
	// a "[" prefix that is neither valid JSON nor a set literal
	got, err := ParseRecipients(`["u1",`)
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestEncodeRecipientsRoundTrip(t *testing.T) {
	raw := EncodeRecipients([]string{"u1", "u2"})
	got, err := ParseRecipients(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, got)

	assert.Equal(t, "[]", EncodeRecipients(nil))
}

func TestVisibleTo(t *testing.T) {
	n := Notification{CreatedBy: "7", Recipients: `["9","12"]`}

	assert.True(t, n.VisibleTo("7"), "creator always sees it")
	assert.True(t, n.VisibleTo("9"))
	assert.True(t, n.VisibleTo("12"))
	assert.False(t, n.VisibleTo("13"))

	broken := Notification{CreatedBy: "7", Recipients: `[oops`}
	assert.True(t, broken.VisibleTo("7"))
	assert.False(t, broken.VisibleTo("9"), "unparseable recipients hide the row")
}
