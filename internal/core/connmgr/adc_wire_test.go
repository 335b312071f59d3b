package connmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== CSUP ====================

func TestADCSup(t *testing.T) {
	t.Run("往返，保留 AD 前缀", func(t *testing.T) {
		feats := adcFeatureList(true)
		line := formatSup(feats)

		parsed, ok := parseSup(line)
		require.True(t, ok)
		assert.ElementsMatch(t, feats, parsed)
	})

	t.Run("RM 令牌被忽略而不是报错", func(t *testing.T) {
		feats, ok := parseSup("CSUP ADBASE RMBAS0")
		require.True(t, ok)
		assert.Equal(t, []string{"BASE"}, feats)
	})

	t.Run("缺少前缀时解析失败", func(t *testing.T) {
		_, ok := parseSup("CINF IDfoo")
		assert.False(t, ok)
	})
}

// ==================== CINF ====================

func TestADCInf(t *testing.T) {
	t.Run("带 TO 的往返", func(t *testing.T) {
		line := formatInf("ABCDEF", true, "tok-1")
		inf, ok := parseInf(line)
		require.True(t, ok)
		assert.Equal(t, "ABCDEF", inf.ID)
		assert.Equal(t, "tok-1", inf.Token)
	})

	t.Run("不带 TO 时 token 为空", func(t *testing.T) {
		line := formatInf("ABCDEF", false, "")
		inf, ok := parseInf(line)
		require.True(t, ok)
		assert.Equal(t, "ABCDEF", inf.ID)
		assert.Empty(t, inf.Token)
	})
}

// ==================== CSTA ====================

func TestADCSta(t *testing.T) {
	t.Run("往返保留 severity 和 code", func(t *testing.T) {
		line := formatSta(severityFatal, codeInfMissing, "ID missing", "FL=ID")
		sev, code, ok := parseSta(line)
		require.True(t, ok)
		assert.Equal(t, severityFatal, sev)
		assert.Equal(t, codeInfMissing, code)
	})

	t.Run("缺少前缀时解析失败", func(t *testing.T) {
		_, _, ok := parseSta("CINF IDfoo")
		assert.False(t, ok)
	})
}
