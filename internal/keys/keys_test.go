package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerateSetsIDAndAlgorithm(t *testing.T) {
	k, err := Generate("node-a")
	require.NoError(t, err)

	assert.Equal(t, "node-a", k.ID())
	assert.Contains(t, k.String(), "node-a")
	assert.Contains(t, k.String(), algorithm)
}

func TestJSONCarriesSecretMaterial(t *testing.T) {
	k, err := Generate("node-a")
	require.NoError(t, err)

	doc, err := k.JSON()
	require.NoError(t, err)
	assert.Contains(t, doc, `"kid":"node-a"`)
	assert.Contains(t, doc, `"k":`)
}

func TestYAMLRoundTrip(t *testing.T) {
	k, err := Generate("node-b")
	require.NoError(t, err)

	data, err := yaml.Marshal(k)
	require.NoError(t, err)

	var got Key
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "node-b", got.ID())
}

func TestUnmarshalYAMLRejectsMissingKeyID(t *testing.T) {
	var got Key
	err := yaml.Unmarshal([]byte(`{"kty":"oct","k":"AA=="}`), &got)
	assert.Error(t, err)
}
