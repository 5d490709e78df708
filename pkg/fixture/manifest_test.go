package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest_EmbeddedDefaults(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)
	require.Len(t, m.Rules, 2)

	latent := m.Rules[0]
	assert.Equal(t, "latent_diffusion_model", latent.Match)
	require.Len(t, latent.Archives, 1)
	assert.Equal(t, "laion400m_demo_data.tar.gz", latent.Archives[0].File)
	assert.Contains(t, latent.Archives[0].URL, "laion400m_demo_data.tar.gz")
	assert.Equal(t, []string{"laion400m_demo_data.tar.gz", "data"}, latent.Archives[0].Cleanup)

	stable := m.Rules[1]
	assert.Equal(t, "stable_diffusion_model", stable.Match)
	require.Len(t, stable.Archives, 2, "stable diffusion needs dataset and pretrained weights")
	assert.Equal(t, "laion400m_demo_data.tar.gz", stable.Archives[0].File)
	assert.Equal(t, "CompVis-stable-diffusion-v1-4-paddle-init-pd.tar.gz", stable.Archives[1].File)
	assert.Contains(t, stable.Archives[1].Cleanup, "CompVis-stable-diffusion-v1-4-paddle-init")
}

func TestLoadManifest_CustomFile(t *testing.T) {
	content := `rules:
  - match: my_model
    archives:
      - name: demo
        url: https://example.com/demo.tar.gz
        archive: demo.tar.gz
        cleanup: [demo.tar.gz, demo]
`
	path := filepath.Join(t.TempDir(), "fixtures.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Rules, 1)
	assert.Equal(t, "my_model", m.Rules[0].Match)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read fixture manifest")
}

func TestLoadManifest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad yaml", "rules: [", "parse fixture manifest"},
		{"empty match", "rules:\n  - match: \"\"\n    archives: []\n", "empty match"},
		{"empty url", "rules:\n  - match: m\n    archives:\n      - archive: a.tar.gz\n", "empty url"},
		{"empty archive", "rules:\n  - match: m\n    archives:\n      - url: https://example.com/a\n", "empty archive filename"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fixtures.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := LoadManifest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestManifest_Match(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, m.Match("bert_base"))
	})

	t.Run("substring containment", func(t *testing.T) {
		rules := m.Match("my_latent_diffusion_model_v2")
		require.Len(t, rules, 1)
		assert.Equal(t, "latent_diffusion_model", rules[0].Match)
	})

	t.Run("independent rules both fire", func(t *testing.T) {
		rules := m.Match("latent_diffusion_model-stable_diffusion_model")
		require.Len(t, rules, 2, "matching is independent, never if/else-if")
	})
}
