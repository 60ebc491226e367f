package format

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cdb-transformer/internal/setcode"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "骄傲与灵魂之龙(100000000) 暗 8星 龙/特殊召唤 2500 2500\n这张卡不能通常召唤。\n\n" +
	"王家的人柱(172016025) 通常陷阱 (Custom)\n①：双方玩家把卡组中的怪兽卡全部送去墓地。"

func TestGuess(t *testing.T) {
	testCases := []struct {
		path string
		want Format
		ok   bool
	}{
		{path: "cards.txt", want: Xyyz, ok: true},
		{path: "cards.XYYZ", want: Xyyz, ok: true},
		{path: "dump.sql", want: SQL, ok: true},
		{path: "/tmp/cards.cdb", want: CDB, ok: true},
		{path: "script/c100.lua", want: Script, ok: true},
		{path: "cards.yml", want: YAML, ok: true},
		{path: "/dev/stdin", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := Guess(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	f, err := Parse(" SQL ")
	require.NoError(t, err)
	assert.Equal(t, SQL, f)

	_, err = Parse("json")
	assert.ErrorContains(t, err, `unknown format "json"`)
}

func TestFormat_FlagValue(t *testing.T) {
	var f Format = Xyyz
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Var(&f, "to-format", "")

	require.NoError(t, flags.Parse([]string{"--to-format", "yaml"}))
	assert.Equal(t, YAML, f)
	assert.Error(t, flags.Parse([]string{"--to-format", "nope"}))
}

func TestRegistry_ConvertBetweenTextFormats(t *testing.T) {
	r := NewRegistry(setcode.Empty, 0, nil)

	cards, err := r.Read(Xyyz, strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, cards, 2)

	for _, f := range []Format{SQL, YAML, Xyyz} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Write(f, &buf, cards))

			back, err := r.Read(f, &buf)
			require.NoError(t, err)

			var out bytes.Buffer
			require.NoError(t, r.Write(Xyyz, &out, back))
			assert.Equal(t, sample, out.String())
		})
	}
}

func TestRegistry_Files(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := NewRegistry(setcode.Empty, 0, nil)

	cards, err := r.Read(Xyyz, strings.NewReader(sample))
	require.NoError(t, err)

	db := filepath.Join(dir, "cards.cdb")
	require.NoError(t, r.WriteFile(ctx, CDB, db, cards))
	fromDB, err := r.ReadFile(ctx, CDB, db)
	require.NoError(t, err)
	assert.Len(t, fromDB, 2)

	txt := filepath.Join(dir, "cards.txt")
	require.NoError(t, r.WriteFile(ctx, Xyyz, txt, cards))
	data, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))

	require.NoError(t, r.WriteFile(ctx, Script, filepath.Join(dir, "c{id}.lua"), cards))
	fromScript, err := r.ReadFile(ctx, Script, filepath.Join(dir, "c172016025.lua"))
	require.NoError(t, err)
	require.Len(t, fromScript, 1)
	assert.Equal(t, "王家的人柱", fromScript[0].Name)

	_, err = r.ReadFile(ctx, Xyyz, filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = r.Read(CDB, strings.NewReader(""))
	assert.ErrorContains(t, err, "no text form")
}
