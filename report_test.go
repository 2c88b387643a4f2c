package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bjaus/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fixtures ---

var created = time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("CLT", -3*60*60))

func gorro() report.Row {
	return report.Row{
		Name:        "Gorro",
		Price:       15000,
		Description: "Gorro tejido a mano",
		Category:    "Accesorios",
		Material:    "Lana",
		Color:       "Rojo",
		Stock:       3,
		CreatedAt:   created,
		SellerID:    "42",
	}
}

func tricky() report.Row {
	return report.Row{
		Name:        `Bufanda "grande", doble`,
		Price:       12.5,
		Description: "línea uno\nlínea dos, con ñandú & <merino>",
		Category:    "Ropa",
		Stock:       0,
		SellerID:    "7",
	}
}

// --- Formats ---

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input   string
		want    report.Format
		wantErr require.ErrorAssertionFunc
	}{
		"csv":        {input: "csv", want: report.CSV, wantErr: require.NoError},
		"json":       {input: "json", want: report.JSON, wantErr: require.NoError},
		"excel":      {input: "excel", want: report.Excel, wantErr: require.NoError},
		"pdf":        {input: "pdf", want: report.PDF, wantErr: require.NoError},
		"upper":      {input: "JSON", want: report.JSON, wantErr: require.NoError},
		"padded":     {input: "  Pdf ", want: report.PDF, wantErr: require.NoError},
		"xlsx alias": {input: "xlsx", want: report.Excel, wantErr: require.NoError},
		"unknown":    {input: "xml", want: "", wantErr: require.Error},
		"empty":      {input: "", want: "", wantErr: require.Error},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := report.ParseFormat(tt.input)
			tt.wantErr(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatSentinel(t *testing.T) {
	t.Parallel()
	_, err := report.ParseFormat("nonsense")
	require.ErrorIs(t, err, report.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), `"nonsense"`)
}

func TestFormats(t *testing.T) {
	t.Parallel()
	got := report.Formats()
	assert.Equal(t, []report.Format{report.CSV, report.JSON, report.Excel, report.PDF}, got)
	// Returned slice must be a copy.
	got[0] = "modified"
	assert.Equal(t, report.CSV, report.Formats()[0])
}

func TestFormatString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "excel", report.Excel.String())
}

// --- Rows ---

func TestFields(t *testing.T) {
	t.Parallel()
	got := report.Fields()
	assert.Equal(t, []string{
		"name", "price", "description", "category", "material",
		"color", "stock", "created_at", "seller_id",
	}, got)
	got[0] = "modified"
	assert.Equal(t, "name", report.Fields()[0])
}

func TestRowValueEveryField(t *testing.T) {
	t.Parallel()
	var zero report.Row
	for _, f := range report.Fields() {
		assert.NotNil(t, zero.Value(f), f)
	}
	assert.Equal(t, "", zero.Value(report.FieldCreatedAt))
	assert.Equal(t, "2025-03-14T12:26:53Z", gorro().Value(report.FieldCreatedAt))
	assert.Equal(t, "", zero.Value("unknown"))
}

func TestRowText(t *testing.T) {
	t.Parallel()
	r := gorro()
	assert.Equal(t, "15000", r.Text(report.FieldPrice))
	assert.Equal(t, "3", r.Text(report.FieldStock))
	assert.Equal(t, "12.5", tricky().Text(report.FieldPrice))
}

func TestRowFromMap(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input   map[string]any
		want    report.Row
		wantErr error
	}{
		"full": {
			input: map[string]any{
				"name": "Gorro", "price": 15000, "description": "Gorro tejido a mano",
				"category": "Accesorios", "material": "Lana", "color": "Rojo",
				"stock": int64(3), "created_at": created, "seller_id": 42,
			},
			want: gorro(),
		},
		"missing keys default": {
			input: map[string]any{"name": "Solo"},
			want:  report.Row{Name: "Solo"},
		},
		"nil values default": {
			input: map[string]any{"name": nil, "price": nil, "created_at": nil},
			want:  report.Row{},
		},
		"numeric strings": {
			input: map[string]any{"price": "19990.50", "stock": "4", "created_at": "2025-03-14T12:26:53Z"},
			want:  report.Row{Price: 19990.5, Stock: 4, CreatedAt: created.UTC()},
		},
		"json number": {
			input: map[string]any{"price": json.Number("10.25")},
			want:  report.Row{Price: 10.25},
		},
		"bad price type": {
			input:   map[string]any{"price": []int{1}},
			wantErr: report.ErrEncoding,
		},
		"bad price text": {
			input:   map[string]any{"price": "cheap"},
			wantErr: report.ErrEncoding,
		},
		"bad timestamp": {
			input:   map[string]any{"created_at": "yesterday"},
			wantErr: report.ErrEncoding,
		},
		"integral float stock": {
			input: map[string]any{"stock": 4.0, "price": json.Number("3")},
			want:  report.Row{Stock: 4, Price: 3},
		},
		"json number stock": {
			input: map[string]any{"stock": json.Number("12")},
			want:  report.Row{Stock: 12},
		},
		"unsigned stock": {
			input: map[string]any{"stock": uint32(1_000_000)},
			want:  report.Row{Stock: 1_000_000},
		},
		"fractional stock": {
			input:   map[string]any{"stock": "4.7"},
			wantErr: report.ErrEncoding,
		},
		"fractional float stock": {
			input:   map[string]any{"stock": 2.5},
			wantErr: report.ErrEncoding,
		},
		"overflow stock": {
			input:   map[string]any{"stock": 1e30},
			wantErr: report.ErrEncoding,
		},
		"overflow unsigned stock": {
			input:   map[string]any{"stock": uint64(math.MaxUint64)},
			wantErr: report.ErrEncoding,
		},
		"nan stock": {
			input:   map[string]any{"stock": math.NaN()},
			wantErr: report.ErrEncoding,
		},
		"infinite stock": {
			input:   map[string]any{"stock": math.Inf(1)},
			wantErr: report.ErrEncoding,
		},
		"bad name type": {
			input:   map[string]any{"name": 1.5},
			wantErr: report.ErrEncoding,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := report.RowFromMap(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.CreatedAt.Equal(got.CreatedAt))
			got.CreatedAt, tt.want.CreatedAt = time.Time{}, time.Time{}
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- CSV ---

func newCSV(t *testing.T, opts report.Options) *report.CSVGenerator {
	t.Helper()
	g, err := report.NewCSVGenerator(opts)
	require.NoError(t, err)
	return g
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVGenerate(t *testing.T) {
	t.Parallel()
	g := newCSV(t, report.Options{})
	data, err := g.Generate([]report.Row{gorro()})
	require.NoError(t, err)

	out := string(data)
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 2)
	assert.Contains(t, out, "Gorro")
	assert.Contains(t, out, "15000")
	assert.Equal(t,
		"name,price,description,category,material,color,stock,created_at,seller_id\n"+
			"Gorro,15000,Gorro tejido a mano,Accesorios,Lana,Rojo,3,2025-03-14T12:26:53Z,42\n",
		out)
}

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()
	rows := []report.Row{gorro(), tricky(), {}}
	data, err := newCSV(t, report.Options{}).Generate(rows)
	require.NoError(t, err)

	records := readCSV(t, data)
	require.Len(t, records, len(rows)+1)
	assert.Equal(t, report.Fields(), records[0])
	for i, r := range rows {
		for j, f := range report.Fields() {
			assert.Equal(t, r.Text(f), records[i+1][j], "row %d field %s", i, f)
		}
	}
	_, err = time.Parse(time.RFC3339, records[1][7])
	assert.NoError(t, err)
}

func TestCSVQuoting(t *testing.T) {
	t.Parallel()
	data, err := newCSV(t, report.Options{}).Generate([]report.Row{tricky()})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Bufanda ""grande"", doble"`)
}

func TestCSVEmpty(t *testing.T) {
	t.Parallel()
	data, err := newCSV(t, report.Options{}).Generate(nil)
	require.NoError(t, err)
	records := readCSV(t, data)
	assert.Equal(t, [][]string{report.Fields()}, records)
}

func TestCSVColumnsAndDelimiter(t *testing.T) {
	t.Parallel()
	g := newCSV(t, report.Options{
		Columns:   []string{"price", "name", "unknown"},
		Delimiter: ';',
	})
	data, err := g.Generate([]report.Row{gorro()})
	require.NoError(t, err)
	assert.Equal(t, "price;name;unknown\n15000;Gorro;\n", string(data))
}

func TestCSVDoesNotMutateRows(t *testing.T) {
	t.Parallel()
	rows := []report.Row{gorro(), tricky()}
	before := append([]report.Row(nil), rows...)
	_, err := newCSV(t, report.Options{}).Generate(rows)
	require.NoError(t, err)
	assert.Equal(t, before, rows)
}

func TestCSVWriteError(t *testing.T) {
	t.Parallel()
	err := newCSV(t, report.Options{}).Write(&errWriter{}, []report.Row{gorro()})
	require.ErrorIs(t, err, report.ErrEncoding)
	assert.ErrorIs(t, err, errWriteFailed)
}

func TestCSVRejectsInvalidDelimiter(t *testing.T) {
	t.Parallel()
	for _, d := range []rune{'"', '\r', '\n', 0xFFFD, '\x07'} {
		_, err := report.NewCSVGenerator(report.Options{Delimiter: d})
		require.ErrorIs(t, err, report.ErrInvalidOption, "%q", d)

		g, err := report.NewFactory(report.Options{Delimiter: d}).Select("csv")
		assert.Nil(t, g, "%q", d)
		require.ErrorIs(t, err, report.ErrInvalidOption, "%q", d)
		assert.NotErrorIs(t, err, report.ErrEncoding, "%q", d)
		var cfgErr *report.ConfigError
		require.ErrorAs(t, err, &cfgErr, "%q", d)
		assert.Equal(t, report.CSV, cfgErr.Format)
	}
}

func TestCSVTabDelimiter(t *testing.T) {
	t.Parallel()
	data, err := newCSV(t, report.Options{Columns: []string{"name", "stock"}, Delimiter: '\t'}).
		Generate([]report.Row{gorro()})
	require.NoError(t, err)
	assert.Equal(t, "name\tstock\nGorro\t3\n", string(data))
}

func TestValidateDelimiter(t *testing.T) {
	t.Parallel()
	for _, d := range []rune{',', ';', '\t', '|', 'ñ'} {
		assert.NoError(t, report.ValidateDelimiter(d), "%q", d)
	}
	for _, d := range []rune{0, '"', '\r', '\n', 0xFFFD, '\x00', '\x1b', -1} {
		assert.ErrorIs(t, report.ValidateDelimiter(d), report.ErrInvalidOption, "%q", d)
	}
}

func TestValidateSheetName(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input   string
		wantErr bool
	}{
		"default":   {input: "Productos"},
		"accents":   {input: "Categoría Ñandú"},
		"31 chars":  {input: strings.Repeat("a", 31)},
		"32 chars":  {input: strings.Repeat("a", 32), wantErr: true},
		"blank":     {input: "", wantErr: true},
		"colon":     {input: "a:b", wantErr: true},
		"backslash": {input: `a\b`, wantErr: true},
		"question":  {input: "a?", wantErr: true},
		"star":      {input: "a*", wantErr: true},
		"quote end": {input: "a'", wantErr: true},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := report.ValidateSheetName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, report.ErrInvalidOption)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCSVFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "productos_report.csv", newCSV(t, report.Options{}).Filename())
}

// --- JSON ---

func decodeJSON(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestJSONGenerate(t *testing.T) {
	t.Parallel()
	data, err := report.NewJSONGenerator(report.Options{}).Generate([]report.Row{gorro()})
	require.NoError(t, err)

	out := decodeJSON(t, data)
	require.Len(t, out, 1)
	assert.Equal(t, "Gorro", out[0]["name"])
	assert.Equal(t, 15000.0, out[0]["price"])
	assert.Equal(t, "2025-03-14T12:26:53Z", out[0]["created_at"])
	assert.Contains(t, string(data), "\n  {\n    \"name\": \"Gorro\"")
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	rows := []report.Row{gorro(), tricky(), {}}
	data, err := report.NewJSONGenerator(report.Options{}).Generate(rows)
	require.NoError(t, err)

	out := decodeJSON(t, data)
	require.Len(t, out, len(rows))
	for i, r := range rows {
		assert.Len(t, out[i], len(report.Fields()))
		for _, f := range report.Fields() {
			switch v := r.Value(f).(type) {
			case float64:
				assert.Equal(t, v, out[i][f])
			case int:
				assert.Equal(t, float64(v), out[i][f])
			default:
				assert.Equal(t, v, out[i][f], "row %d field %s", i, f)
			}
		}
	}
}

func TestJSONPreservesNonASCII(t *testing.T) {
	t.Parallel()
	data, err := report.NewJSONGenerator(report.Options{}).Generate([]report.Row{tricky()})
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "ñandú & <merino>")
	assert.NotContains(t, out, `\u00f1`)
	assert.NotContains(t, out, `\u0026`)
}

func TestJSONIndentation(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		opts report.Options
		want string
	}{
		"compact": {
			opts: report.Options{Compact: true},
			want: `[{"name":"Solo","price":0,"description":"","category":"","material":"","color":"","stock":0,"created_at":"","seller_id":""}]` + "\n",
		},
		"tabs": {
			opts: report.Options{Indent: "\t"},
			want: "[\n\t{\n\t\t\"name\": \"Solo\",",
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data, err := report.NewJSONGenerator(tt.opts).Generate([]report.Row{{Name: "Solo"}})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), tt.want), string(data))
		})
	}
}

func TestJSONEmpty(t *testing.T) {
	t.Parallel()
	data, err := report.NewJSONGenerator(report.Options{}).Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
	assert.Empty(t, decodeJSON(t, data))
}

func TestJSONEncodingError(t *testing.T) {
	t.Parallel()
	data, err := report.NewJSONGenerator(report.Options{}).Generate([]report.Row{{Price: math.NaN()}})
	require.ErrorIs(t, err, report.ErrEncoding)
	assert.Contains(t, err.Error(), `"json"`)
	assert.Nil(t, data)
}

func TestJSONFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "productos_report.json", report.NewJSONGenerator(report.Options{}).Filename())
}

// --- Factory ---

func TestSelect(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input string
		want  report.Generator
	}{
		"csv":      {input: "csv", want: &report.CSVGenerator{}},
		"json":     {input: "json", want: &report.JSONGenerator{}},
		"JSON":     {input: "JSON", want: &report.JSONGenerator{}},
		"nonsense": {input: "nonsense", want: &report.CSVGenerator{}},
		"unset":    {input: "", want: &report.CSVGenerator{}},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g, err := report.NewFactory(report.Options{}).Select(tt.input)
			require.NoError(t, err)
			assert.IsType(t, tt.want, g)
		})
	}
}

func TestSelectShorthand(t *testing.T) {
	t.Parallel()
	g, err := report.Select("json", report.Options{Compact: true})
	require.NoError(t, err)
	data, err := g.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSelectMissingCapability(t *testing.T) {
	t.Parallel()
	for _, f := range []report.Format{report.Excel, report.PDF} {
		f := f
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			fa := report.NewFactory(report.Options{})
			fa.Deregister(f)

			g, err := fa.Select(f.String())
			require.Error(t, err)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, report.ErrMissingCapability)

			var cfgErr *report.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, f, cfgErr.Format)
			assert.Contains(t, err.Error(), f.String())
		})
	}
}

func TestSelectMissingExcelNamesDependency(t *testing.T) {
	t.Parallel()
	fa := report.NewFactory(report.Options{})
	fa.Deregister(report.Excel)
	_, err := fa.Select("excel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"excel"`)
	assert.Contains(t, err.Error(), "excelize")
	assert.Contains(t, err.Error(), "noxlsx")
}

func TestSelectConstructorFailure(t *testing.T) {
	t.Parallel()
	errBoom := errors.New("boom")
	fa := report.NewFactory(report.Options{})
	fa.Register(report.PDF, func(report.Options) (report.Generator, error) { return nil, errBoom })

	_, err := fa.Select("pdf")
	require.ErrorIs(t, err, errBoom)
	var cfgErr *report.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, report.PDF, cfgErr.Format)
	assert.Contains(t, err.Error(), "fpdf")
	assert.NotContains(t, err.Error(), "nopdf")
}

func TestSelectIsLazy(t *testing.T) {
	t.Parallel()
	calls := 0
	fa := report.NewFactory(report.Options{})
	fa.Register(report.Excel, func(report.Options) (report.Generator, error) {
		calls++
		return nil, errors.New("unavailable")
	})

	g, err := fa.Select("csv")
	require.NoError(t, err)
	assert.IsType(t, &report.CSVGenerator{}, g)
	assert.Zero(t, calls)

	_, err = fa.Select("excel")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFactoryConcurrentUse(t *testing.T) {
	t.Parallel()
	fa := report.NewFactory(report.Options{})
	jsonCtor := func(opts report.Options) (report.Generator, error) {
		return report.NewJSONGenerator(opts), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i%2 == 0 {
					fa.Register(report.PDF, jsonCtor)
				} else {
					fa.Deregister(report.PDF)
				}
				_ = fa.Available()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g, err := fa.Select("csv")
				assert.NoError(t, err)
				assert.NotNil(t, g)
				_, _ = fa.Select("pdf")
			}
		}()
	}
	wg.Wait()

	fa.Register(report.PDF, jsonCtor)
	g, err := fa.Select("pdf")
	require.NoError(t, err)
	assert.IsType(t, &report.JSONGenerator{}, g)
}

func TestSelectPassesOptions(t *testing.T) {
	t.Parallel()
	var got report.Options
	fa := report.NewFactory(report.Options{SheetName: "Inventario"})
	fa.Register(report.Excel, func(opts report.Options) (report.Generator, error) {
		got = opts
		return report.NewJSONGenerator(opts), nil
	})
	_, err := fa.Select("excel")
	require.NoError(t, err)
	assert.Equal(t, "Inventario", got.SheetName)
}

func TestAvailable(t *testing.T) {
	t.Parallel()
	fa := report.NewFactory(report.Options{})
	fa.Deregister(report.JSON)
	assert.NotContains(t, fa.Available(), report.JSON)
	assert.Contains(t, fa.Available(), report.CSV)

	// Other factories are unaffected.
	assert.Contains(t, report.NewFactory(report.Options{}).Available(), report.JSON)
}

// --- Helpers ---

var errWriteFailed = errors.New("write failed")

type errWriter struct{}

func (e *errWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}
