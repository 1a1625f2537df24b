package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	b, ok := Parse("fraud-or-not-lambda-development-001-042", "fraud-or-not", "development")
	require.True(t, ok)
	assert.Equal(t, "fraud-or-not", b.Project)
	assert.Equal(t, "development", b.Environment)
	assert.Equal(t, 1, b.Thousands)
	assert.Equal(t, 42, b.Number)
	assert.Equal(t, 1042, b.Ordinal())
}

func TestParseRejectsForeignNames(t *testing.T) {
	cases := []string{
		"fraud-or-not-assets-development",           // not a rotation bucket
		"fraud-or-not-lambda-development-1-2",       // fields not zero-padded
		"fraud-or-not-lambda-staging-000-001",       // wrong environment
		"people-cards-lambda-development-000-001",   // wrong project
		"fraud-or-not-lambda-development-000-001-x", // trailing junk
	}
	for _, name := range cases {
		_, ok := Parse(name, "fraud-or-not", "development")
		assert.False(t, ok, name)
	}
}

func TestStringRoundTrip(t *testing.T) {
	b := BucketName{Project: "people-cards", Environment: "prod", Thousands: 2, Number: 7}
	assert.Equal(t, "people-cards-lambda-prod-002-007", b.String())

	parsed, ok := Parse(b.String(), "people-cards", "prod")
	require.True(t, ok)
	assert.Equal(t, b, parsed)
}

func TestNextCarriesIntoThousands(t *testing.T) {
	b := BucketName{Project: "p", Environment: "e", Thousands: 0, Number: 999}
	next, err := b.Next()
	require.NoError(t, err)
	assert.Equal(t, "p-lambda-e-001-000", next.String())
	assert.Equal(t, 1000, next.Ordinal())
}

func TestNextOverflow(t *testing.T) {
	b := BucketName{Project: "p", Environment: "e", Thousands: 999, Number: 999}
	_, err := b.Next()
	assert.Error(t, err)
}

func TestProposeNextEmptySet(t *testing.T) {
	b, err := ProposeNext(nil, "fraud-or-not", "development")
	require.NoError(t, err)
	assert.Equal(t, "fraud-or-not-lambda-development-000-000", b.String())
}

func TestLatestPicksHighestOrdinal(t *testing.T) {
	names := []string{
		"p-lambda-e-000-000",
		"p-lambda-e-000-003",
		"p-lambda-e-001-000",
	}
	latest, ok := Latest(names, "p", "e")
	require.True(t, ok)
	assert.Equal(t, "p-lambda-e-001-000", latest.String())

	next, err := ProposeNext(names, "p", "e")
	require.NoError(t, err)
	assert.Equal(t, "p-lambda-e-001-001", next.String())
}

func TestFilterExcludesNonMatching(t *testing.T) {
	names := []string{
		"p-lambda-e-000-001",
		"other-lambda-e-000-009",
		"p-lambda-staging-000-009",
		"p-assets-e",
		"p-lambda-e-000-002",
	}
	matched := Filter(names, "p", "e")
	require.Len(t, matched, 2)
	assert.Equal(t, "p-lambda-e-000-001", matched[0].String())
	assert.Equal(t, "p-lambda-e-000-002", matched[1].String())
}

func TestExpiredKeepsRetentionNewest(t *testing.T) {
	var names []string
	for i := 0; i < 13; i++ {
		b, err := FromOrdinal("p", "e", i)
		require.NoError(t, err)
		names = append(names, b.String())
	}

	expired := Expired(names, "p", "e", DefaultRetention)
	require.Len(t, expired, 3)
	assert.Equal(t, "p-lambda-e-000-000", expired[0].String())
	assert.Equal(t, "p-lambda-e-000-002", expired[2].String())

	assert.Nil(t, Expired(names[:5], "p", "e", DefaultRetention))
}
