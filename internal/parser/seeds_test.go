package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"query-expander/internal/models"
	"query-expander/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func seedTexts(seeds []models.SeedQuery) []string {
	out := make([]string, len(seeds))
	for i, s := range seeds {
		out[i] = s.Text
	}
	return out
}

func TestLoadSeeds_CSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr error
	}{
		{
			name:    "single column",
			content: "seed_query\nbest running shoes\ncheap flights to rome\n",
			want:    []string{"best running shoes", "cheap flights to rome"},
		},
		{
			name:    "extra columns and empty cells",
			content: "id,seed_query,notes\n1,\"shoes, trail\",x\n2,,y\n3,tents\n",
			want:    []string{"shoes, trail", "tents"},
		},
		{
			name:    "byte order mark on header",
			content: "\ufeffseed_query\nlaptops\n",
			want:    []string{"laptops"},
		},
		{
			name:    "missing column",
			content: "query\nbest running shoes\n",
			wantErr: parser.ErrMissingColumn,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: parser.ErrMissingColumn,
		},
		{
			name:    "header only",
			content: "seed_query\n",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "seeds.csv", tt.content)
			seeds, err := parser.LoadSeeds(path, "seed_query")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, seedTexts(seeds))
		})
	}
}

func TestLoadSeeds_Text(t *testing.T) {
	path := writeFile(t, "seeds.txt", "best running shoes\r\n\n  \ncheap flights\n")
	seeds, err := parser.LoadSeeds(path, "seed_query")
	require.NoError(t, err)
	assert.Equal(t, []string{"best running shoes", "cheap flights"}, seedTexts(seeds))
	assert.Equal(t, 4, seeds[1].Row)
}

func TestLoadSeeds_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"id", "seed_query"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{1, "best running shoes"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{2, "tax deadline"}))

	path := filepath.Join(t.TempDir(), "seeds.xlsx")
	require.NoError(t, f.SaveAs(path))

	seeds, err := parser.LoadSeeds(path, "seed_query")
	require.NoError(t, err)
	assert.Equal(t, []string{"best running shoes", "tax deadline"}, seedTexts(seeds))

	_, err = parser.LoadSeeds(path, "missing")
	assert.ErrorIs(t, err, parser.ErrMissingColumn)
}

func TestLoadSeeds_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"seeds.json", "seeds.ods"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, "seed_query\nlaptops\n")
			_, err := parser.LoadSeeds(path, "seed_query")
			assert.ErrorIs(t, err, parser.ErrUnsupportedFormat)
		})
	}
}

func TestReadSeedsCSV_CustomColumn(t *testing.T) {
	seeds, err := parser.ReadSeedsCSV(strings.NewReader("keyword\nhiking boots\n"), "keyword")
	require.NoError(t, err)
	assert.Equal(t, []string{"hiking boots"}, seedTexts(seeds))
	assert.Equal(t, 2, seeds[0].Row)
}
