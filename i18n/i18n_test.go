package i18n

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en", "en"},
		{"pt-br", "pt-br"},
		{"pt-BR", "pt-br"},
		{"pt_BR.UTF-8", "pt-br"},
		{"pt-PT", "pt-br"},
		{"pt", "pt-br"},
		{"en-GB", "en"},
		{"de-DE", "en"},
		{"C", "en"},
		{"", "en"},
		{"not a locale", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.locale).Code)
		})
	}
}

func TestLabel(t *testing.T) {
	pt := Resolve("pt-BR")
	assert.Equal(t, "Banco", pt.Label("BANK"))
	assert.Equal(t, "Saldo", pt.Label("BALANCE"))
	assert.Equal(t, "UNKNOWN_LABEL", pt.Label("UNKNOWN_LABEL"))

	en := Resolve("en")
	assert.Equal(t, "Bank", en.Label("BANK"))
	assert.Equal(t, "Total Income", en.Label("TOTAL_INCOME"))
}

func TestLabelFallsBackToEnglish(t *testing.T) {
	en, _ := Lookup("en")
	partial, err := Parse("xx", []byte("name: Partial\nlabels:\n  BANK: Bnk\n"))
	assert.NoError(t, err)
	partial.fallback = en

	assert.Equal(t, "Bnk", partial.Label("BANK"))
	assert.Equal(t, "Account", partial.Label("ACCOUNT"))
	desc, ok := partial.TagDescription("FITID")
	assert.True(t, ok)
	assert.Equal(t, "Financial Institution Transaction ID - Unique identifier assigned by the FI", desc)
}

func TestTagDescription(t *testing.T) {
	desc, ok := Resolve("pt-br").TagDescription("STMTTRN")
	assert.True(t, ok)
	assert.Equal(t, "Transação do Extrato - Uma única transação financeira", desc)

	desc, ok = Resolve("en").TagDescription("DIRECTDEP")
	assert.True(t, ok)
	assert.Equal(t, "Direct Deposit - Direct deposit (e.g., payroll)", desc)

	_, ok = Resolve("en").TagDescription("NOPE")
	assert.False(t, ok)
}

func TestCatalogsAreComplete(t *testing.T) {
	en, ok := Lookup(Default)
	assert.True(t, ok)

	for _, code := range Languages() {
		cat, _ := Lookup(code)
		for key := range en.Labels {
			_, ok := cat.Labels[key]
			assert.True(t, ok, "%s is missing label %s", code, key)
		}
		for tag := range en.Tags {
			_, ok := cat.Tags[tag]
			assert.True(t, ok, "%s is missing tag %s", code, tag)
		}
	}
	assert.Equal(t, []string{"en", "pt-br"}, Languages())
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("bad", []byte("labels: [unterminated"))
	assert.Error(t, err)
}
