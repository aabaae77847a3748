package finder_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/golens/pkg/finder"
)

func TestDefaultFinder_FindSources(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/src/a.go":          "package a",
		"/src/a_test.go":     "package a",
		"/src/sub/b.go":      "package b",
		"/src/notes.txt":     "hello",
		"/src/sub/deep/c.go": "package c",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	tests := []struct {
		name       string
		dir        string
		skip       []string
		extensions []string
		want       []string
		wantErr    bool
	}{
		{
			name: "default_extensions",
			dir:  "/src",
			want: []string{"/src/a.go", "/src/a_test.go", "/src/sub/b.go", "/src/sub/deep/c.go"},
		},
		{
			name: "skip_tests",
			dir:  "/src",
			skip: []string{"**/*_test.go"},
			want: []string{"/src/a.go", "/src/sub/b.go", "/src/sub/deep/c.go"},
		},
		{
			name:       "other_extension",
			dir:        "/src",
			extensions: []string{".txt"},
			want:       []string{"/src/notes.txt"},
		},
		{
			name: "subdirectory",
			dir:  "/src/sub",
			skip: []string{"deep/**"},
			want: []string{"/src/sub/b.go"},
		},
		{
			name:    "non_existent_directory",
			dir:     "/nope",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := finder.NewDefaultFinder(fs, tt.skip)
			got, err := f.FindSources(context.Background(), tt.dir, tt.extensions)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			var paths []string
			for _, file := range got {
				paths = append(paths, file.Path)
				assert.NotEmpty(t, file.Content)
				assert.NotEmpty(t, file.FileType)
			}
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestDefaultFinder_FindSources_Context(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.go", []byte("package a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := finder.NewDefaultFinder(fs, nil).FindSources(ctx, "/src", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
