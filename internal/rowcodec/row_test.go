package rowcodec

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	row := Row{ID: 1, Username: "alice", Email: "alice@example.com"}

	buf := make([]byte, Size)
	require.NoError(t, Serialize(row, buf))

	got, err := Deserialize(buf)
	require.NoError(t, err)
	require.Equal(t, row, got)
}

func TestSerializeMaxLengthFields(t *testing.T) {
	username := ""
	for i := 0; i < MaxUsernameLen; i++ {
		username += "u"
	}
	email := ""
	for i := 0; i < MaxEmailLen; i++ {
		email += "e"
	}

	row := Row{ID: 42, Username: username, Email: email}
	buf := make([]byte, Size)
	require.NoError(t, Serialize(row, buf))

	got, err := Deserialize(buf)
	require.NoError(t, err)
	require.Equal(t, row, got)
}

func TestSerializeRejectsOversizedFields(t *testing.T) {
	buf := make([]byte, Size)

	tooLongUsername := Row{ID: 1, Username: string(make([]byte, MaxUsernameLen+1)), Email: "x"}
	require.Error(t, Serialize(tooLongUsername, buf))

	tooLongEmail := Row{ID: 1, Username: "x", Email: string(make([]byte, MaxEmailLen+1))}
	require.Error(t, Serialize(tooLongEmail, buf))
}

func TestSerializeRejectsWrongBufferLength(t *testing.T) {
	row := Row{ID: 1, Username: "a", Email: "b"}
	require.Error(t, Serialize(row, make([]byte, Size-1)))
}

// TestRoundTripProperty exercises P3 (round-trip fidelity) over a batch of
// randomly generated, within-bounds rows.
func TestRoundTripProperty(t *testing.T) {
	faker := gofakeit.New(1)

	for i := 0; i < 50; i++ {
		row := Row{
			ID:       uint32(faker.Number(0, 1_000_000)),
			Username: faker.Username(),
			Email:    faker.Email(),
		}
		if len(row.Username) > MaxUsernameLen {
			row.Username = row.Username[:MaxUsernameLen]
		}
		if len(row.Email) > MaxEmailLen {
			row.Email = row.Email[:MaxEmailLen]
		}

		buf := make([]byte, Size)
		require.NoError(t, Serialize(row, buf))
		got, err := Deserialize(buf)
		require.NoError(t, err)
		require.Equal(t, row, got)
	}
}
