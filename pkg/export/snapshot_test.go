package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/movetree"
)

func TestSaveTreeSnapshot_SVGAndPNG(t *testing.T) {
	tree, err := movetree.Build([]byte("1. e4 e5 (1... c5 2. Nf3) 2. Nf3 Nc6"))
	require.NoError(t, err)

	tmp := t.TempDir()
	cases := []struct {
		name string
		file string
	}{
		{"svg", "tree.svg"},
		{"png", "tree.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(tmp, "out", tc.file)
			require.NoError(t, SaveTreeSnapshot(TreeSnapshotOptions{
				Path:  out,
				Tree:  tree,
				Title: "1. e4 e5 2. Nf3 Nc6",
			}))
			data, err := os.ReadFile(out)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			if tc.name == "svg" {
				s := string(data)
				assert.Contains(t, s, "<svg")
				assert.Contains(t, s, ">Nc6<")
				assert.Contains(t, s, "fill:#808080", "root node is grey")
				return
			}
			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, DefaultSnapshotWidth, img.Bounds().Dx())
			assert.Equal(t, DefaultSnapshotHeight, img.Bounds().Dy())
		})
	}
}

func TestSaveTreeSnapshot_VerticalCustomSize(t *testing.T) {
	tree, err := movetree.Build([]byte("1. d4 d5"))
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "v.png")

	require.NoError(t, SaveTreeSnapshot(TreeSnapshotOptions{
		Path: out, Tree: tree, Width: 300, Height: 200, Orientation: layout.Vertical,
	}))
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
}

func TestSaveTreeSnapshot_Errors(t *testing.T) {
	tree, err := movetree.Build([]byte("1. e4"))
	require.NoError(t, err)
	tmp := t.TempDir()

	err = SaveTreeSnapshot(TreeSnapshotOptions{Path: filepath.Join(tmp, "tree.txt"), Tree: tree})
	assert.ErrorContains(t, err, "unsupported")

	err = SaveTreeSnapshot(TreeSnapshotOptions{Path: filepath.Join(tmp, "tree.svg")})
	assert.Error(t, err)

	err = SaveTreeSnapshot(TreeSnapshotOptions{Path: filepath.Join(tmp, "tiny.svg"), Tree: tree, Width: 50, Height: 50})
	assert.ErrorContains(t, err, "too small")
}
