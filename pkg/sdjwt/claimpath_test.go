package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimPathJSONRoundTrip(t *testing.T) {
	tts := []struct {
		name string
		path ClaimPath
		json string
	}{
		{name: "keys only", path: ClaimPath{Key("address"), Key("street")}, json: `["address","street"]`},
		{name: "with wildcard", path: ClaimPath{Key("nationalities"), Wildcard()}, json: `["nationalities",null]`},
		{name: "with index", path: ClaimPath{Key("items"), Index(2)}, json: `["items",2]`},
		{name: "empty", path: ClaimPath{}, json: `[]`},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json2(tt.path)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, got)

			parsed, err := ParseClaimPath([]byte(tt.json))
			require.NoError(t, err)
			assert.True(t, tt.path.Equal(parsed))
		})
	}
}

func json2(p ClaimPath) (string, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func TestClaimPathString(t *testing.T) {
	p := ClaimPath{Key("address"), Wildcard(), Key("locality")}
	assert.Equal(t, "$.address.*.locality", p.String())
}

func TestParseSingleClaimJsonPath(t *testing.T) {
	tts := []struct {
		name    string
		in      string
		want    ClaimPath
		wantErr bool
	}{
		{name: "simple", in: "$.family_name", want: ClaimPath{Key("family_name")}},
		{name: "nested", in: "$.address.street_address", want: ClaimPath{Key("address"), Key("street_address")}},
		{name: "with index", in: "$.nationalities[0]", want: ClaimPath{Key("nationalities"), Index(0)}},
		{name: "missing dollar", in: "address.street", wantErr: true},
		{name: "wildcard rejected", in: "$.address.*", wantErr: true},
		{name: "negative index rejected", in: "$.items[-1]", wantErr: true},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSingleClaimJsonPath(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, tt.in, got.JSONPathString())
		})
	}
}
