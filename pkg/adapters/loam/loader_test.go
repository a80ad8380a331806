package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/netspec/internal/logging"
	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/pkg/persistence/middleware"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taggerDoc = `---
component:
  - name: tagger
    transition_system:
      registered_name: tagger
    fixed_feature:
      - name: words
        fml: input.word
        embedding_dim: 32
        vocabulary_size: 100
        size: 1
    network_unit:
      registered_name: FeedForwardNetwork
      parameters:
        hidden_layer_sizes: "64"
    num_actions: 45
---
# Tagger

A single-component part-of-speech tagger.
`

func newLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupWorkspace(t)
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}
	return New(loam.NewTypedRepository[SpecMetadata](repo))
}

func TestLoader_Load(t *testing.T) {
	loader := newLoader(t, map[string]string{"tagger.md": taggerDoc})

	ms, err := loader.Load(context.Background(), "tagger")
	require.NoError(t, err)
	require.Len(t, ms.Component, 1)

	c := ms.Component[0]
	assert.Equal(t, "tagger", c.GetName())
	assert.Equal(t, "tagger", c.GetTransitionSystem().GetRegisteredName())
	assert.Equal(t, int32(32), c.GetFixedFeature()[0].GetEmbeddingDim())
	assert.Equal(t, "64", c.GetNetworkUnit().GetParameters()["hidden_layer_sizes"])
	assert.Equal(t, int32(45), c.GetNumActions())
	assert.Nil(t, ms.DebugTracing, "unset fields stay unset")
}

func TestLoader_Describe(t *testing.T) {
	loader := newLoader(t, map[string]string{"tagger.md": taggerDoc})

	body, err := loader.Describe(context.Background(), "tagger")
	require.NoError(t, err)
	assert.Equal(t, "# Tagger\n\nA single-component part-of-speech tagger.", body)
}

func TestLoader_UnknownFieldRejected(t *testing.T) {
	loader := newLoader(t, map[string]string{"bad.md": `---
component:
  - name: tagger
    hidden_size: 12
---
`})

	_, err := loader.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hidden_size")
}

func TestLoader_List_SkipsNotes(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"tagger.md": taggerDoc,
		"README.md": "# Notes\n\nNothing to load here.",
		"parser.md": `---
name: en-parser
component:
  - name: parser
---
`,
	})

	names, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"en-parser", "tagger"}, names)
}

func TestLoader_Load_ByFrontmatterName(t *testing.T) {
	loader := newLoader(t, map[string]string{"parser.md": `---
name: en-parser
component:
  - name: parser
---
`})

	ms, err := loader.Load(context.Background(), "en-parser")
	require.NoError(t, err)
	assert.Equal(t, "parser", ms.Component[0].GetName())
}

func TestLoader_List_DetectsCollisions(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"a.md": "---\nname: dup\ncomponent:\n  - name: x\n---\n",
		"b.md": "---\nname: dup\ncomponent:\n  - name: y\n---\n",
	})

	_, err := loader.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoader_Load_Missing(t *testing.T) {
	loader := newLoader(t, nil)

	_, err := loader.Load(context.Background(), "absent")
	assert.ErrorIs(t, err, ports.ErrSpecNotFound)

	_, err = loader.Load(context.Background(), "../escape")
	assert.ErrorIs(t, err, ports.ErrInvalidName)
}

func TestLoader_ReadOnlyStore(t *testing.T) {
	store := ports.ReadOnly(newLoader(t, map[string]string{"tagger.md": taggerDoc}))
	ctx := context.Background()

	_, err := store.Load(ctx, "tagger")
	require.NoError(t, err)
	assert.ErrorIs(t, store.Delete(ctx, "tagger"), ports.ErrReadOnly)
}

func TestOpen_StrictReadOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tagger.md"), []byte(taggerDoc), 0644))

	loader, err := Open(dir)
	require.NoError(t, err)

	ms, err := loader.Load(context.Background(), "tagger")
	require.NoError(t, err)
	assert.Equal(t, int32(100), ms.Component[0].GetFixedFeature()[0].GetVocabularySize())
}

func TestDescribe_ThroughDecorators(t *testing.T) {
	var store ports.SpecStore = ports.ReadOnly(newLoader(t, map[string]string{"tagger.md": taggerDoc}))
	store = middleware.NewLoggingMiddleware(logging.NewNop())(store)

	desc, ok, err := ports.Describe(context.Background(), store, "tagger")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, desc, "part-of-speech tagger")
}
