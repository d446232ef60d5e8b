package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/jsongram"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jsongram.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
compile:
  root_rule: start
  separator: "-"
  keys: declared
  max_depth: 8
decode:
  duplicates: warn
server:
  addr: ":9090"
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "start", cfg.Compile.RootRule)
	assert.Equal(t, "-", cfg.Compile.Separator)
	assert.Equal(t, "declared", cfg.Compile.Keys)
	assert.Equal(t, 8, cfg.Compile.MaxDepth)
	assert.Equal(t, "warn", cfg.Decode.Duplicates)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched values keep their defaults
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 512, cfg.Decode.MaxDepth)
}

func TestLoad_EmptyPathAndMissingFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("JSONGRAM_PORT", "7070")
	t.Setenv("JSONGRAM_LOG", "/tmp/jsongram.log")
	path := writeConfig(t, `
server:
  addr: ":${JSONGRAM_PORT}"
logging:
  output: $JSONGRAM_LOG
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/jsongram.log", cfg.Logging.Output)
}

func TestExpandEnvVar_KeepsUnknown(t *testing.T) {
	assert.Equal(t, "${JSONGRAM_SURELY_UNSET}", expandEnvVar("${JSONGRAM_SURELY_UNSET}"))
}

func TestValidate(t *testing.T) {
	v := viper.New()
	v.Set("compile.keys", "sorted")
	v.Set("compile.separator", ".")
	v.Set("decode.duplicates", "merge")
	v.Set("logging.level", "trace")
	_, err := LoadFromViper(v)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"compile.keys", "compile.separator", "decode.duplicates", "logging.level"}, fields)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestApplyOverridesAndOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides("warn", "", "declared", "-")
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	opt := cfg.Compile.Options("order")
	assert.Equal(t, jsongram.CompileOpt{
		Name:      "order",
		RootRule:  "root",
		Separator: "-",
		Keys:      jsongram.KeysDeclared,
		MaxDepth:  jsongram.DefaultMaxDepth,
	}, opt)

	assert.Len(t, cfg.Decode.Options(), 3)
}
