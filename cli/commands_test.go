package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ofx/config"
)

const statement = `OFXHEADER:100
DATA:OFXSGML

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>999
<ACCTID>12345-6
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250401
<TRNAMT>100.00
<FITID>T1
<NAME>Salary
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250402
<TRNAMT>-40.00
<FITID>T2
<MEMO>Groceries
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

// isolateEnv keeps the settings of the machine running the tests out of the
// commands.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvTabSize, config.EnvInsertSpaces, config.EnvFormatEnable,
		config.EnvLocale, config.EnvStrictNesting, config.EnvFullHeaderValues, "LANG",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run parses args like main does and runs the selected command.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolateEnv(t)

	var cli Commands
	var stdout, stderr bytes.Buffer

	parser, err := kong.New(&cli,
		kong.Name("ofx"),
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit with code %d", code) }),
		kong.Bind(&cli.Globals),
	)
	assert.NoError(t, err)

	kctx, err := parser.Parse(args)
	assert.NoError(t, err)

	err = kctx.Run()
	return stdout.String(), stderr.String(), err
}

func assertExitCode(t *testing.T, expected int, err error) {
	t.Helper()
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr), "expected a CommandError, got %v", err)
	assert.Equal(t, expected, cmdErr.ExitCode())
}

func TestCheckCmd(t *testing.T) {
	t.Run("Passes", func(t *testing.T) {
		stdout, _, err := run(t, "check", writeFile(t, "ok.ofx", statement))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "✓ Check passed")
	})

	t.Run("ReportsProblems", func(t *testing.T) {
		file := writeFile(t, "broken.ofx", "<OFX>\n<A>\n</B>\n</OFX>\n</OFX>")

		_, stderr, err := run(t, "check", file)
		assertExitCode(t, ExitProblems, err)
		assert.Contains(t, stderr, "broken.ofx:3: closing tag </B> does not match <A> opened on line 2")
		assert.Contains(t, stderr, "broken.ofx:5: closing tag </OFX> has no open container")
		assert.Contains(t, stderr, "2 structural problem(s)")
	})

	t.Run("JSON", func(t *testing.T) {
		file := writeFile(t, "broken.ofx", "<OFX>\n<A>\n")

		stdout, _, err := run(t, "check", "--json", file)
		assertExitCode(t, ExitProblems, err)

		var problems []map[string]any
		assert.NoError(t, json.Unmarshal([]byte(stdout), &problems))
		assert.Equal(t, 2, len(problems))
		assert.Equal(t, "unclosed_container", problems[0]["type"])
		assert.Equal(t, "unclosed_container", problems[1]["type"])
	})
}

func TestFormatCmd(t *testing.T) {
	source := "OFXHEADER:100\n\n<OFX>\n<SIGNONMSGSRSV1>\n<CODE>0\n</SIGNONMSGSRSV1>\n</OFX>\n"
	formatted := "OFXHEADER:100\n\n<OFX>\n  <SIGNONMSGSRSV1>\n    <CODE>0\n  </SIGNONMSGSRSV1>\n</OFX>\n"

	t.Run("Stdout", func(t *testing.T) {
		stdout, _, err := run(t, "format", writeFile(t, "a.ofx", source))
		assert.NoError(t, err)
		assert.Equal(t, formatted, stdout)
	})

	t.Run("Indent", func(t *testing.T) {
		stdout, _, err := run(t, "format", "--indent", "4", writeFile(t, "a.ofx", source))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "\n        <CODE>0\n")
	})

	t.Run("Tabs", func(t *testing.T) {
		stdout, _, err := run(t, "format", "--tabs", writeFile(t, "a.ofx", source))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "\n\t\t<CODE>0\n")
	})

	t.Run("Write", func(t *testing.T) {
		file := writeFile(t, "a.ofx", source)

		stdout, _, err := run(t, "format", "--write", file)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Formatted")

		content, err := os.ReadFile(file)
		assert.NoError(t, err)
		assert.Equal(t, formatted, string(content))

		stdout, _, err = run(t, "format", "--write", file)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "is already formatted")
	})

	t.Run("WriteKeepsLegacyCharset", func(t *testing.T) {
		legacy := "CHARSET:1252\n\n<OFX>\n<MEMO>Transa\xe7\xe3o\n</OFX>\n"
		file := writeFile(t, "legacy.ofx", legacy)

		_, _, err := run(t, "format", "--write", file)
		assert.NoError(t, err)

		content, err := os.ReadFile(file)
		assert.NoError(t, err)
		assert.Equal(t, "CHARSET:1252\n\n<OFX>\n  <MEMO>Transa\xe7\xe3o\n</OFX>\n", string(content))
	})

	t.Run("WriteWithProblemsNeedsForce", func(t *testing.T) {
		if isTerminal() {
			t.Skip("stdin is a terminal")
		}
		file := writeFile(t, "a.ofx", source+"</OFX>\n")

		_, stderr, err := run(t, "format", "--write", file)
		assertExitCode(t, ExitProblems, err)
		assert.Contains(t, stderr, "has no open container")
		assert.Contains(t, stderr, "use --force")

		content, err := os.ReadFile(file)
		assert.NoError(t, err)
		assert.Equal(t, source+"</OFX>\n", string(content))

		_, _, err = run(t, "format", "--write", "--force", file)
		assert.NoError(t, err)
		content, err = os.ReadFile(file)
		assert.NoError(t, err)
		assert.Equal(t, formatted+"</OFX>\n", string(content))
	})

	t.Run("Disabled", func(t *testing.T) {
		file := writeFile(t, "a.ofx", source)
		isolateEnv(t)

		var cli Commands
		var stdout bytes.Buffer
		parser, err := kong.New(&cli, kong.Writers(&stdout, &bytes.Buffer{}), kong.Bind(&cli.Globals))
		assert.NoError(t, err)

		t.Setenv(config.EnvFormatEnable, "false")
		kctx, err := parser.Parse([]string{"format", file})
		assert.NoError(t, err)
		assert.NoError(t, kctx.Run())
		assert.Equal(t, source, stdout.String())
	})
}

func TestConvertCmd(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		stdout, _, err := run(t, "convert", writeFile(t, "a.ofx", "OFXHEADER:100\n<OFX>\n<CODE>0\n</OFX>"))
		assert.NoError(t, err)

		var doc struct {
			Header map[string]string         `json:"header"`
			Body   map[string]map[string]int `json:"body"`
		}
		assert.NoError(t, json.Unmarshal([]byte(stdout), &doc))
		assert.Equal(t, "100", doc.Header["OFXHEADER"])
		assert.Equal(t, 0, doc.Body["OFX"]["CODE"])
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, _, err := run(t, "convert", "--to", "xml", writeFile(t, "a.ofx", statement))
		assertExitCode(t, ExitUsage, err)
		assert.EqualError(t, err, "unsupported format: xml")
	})

	t.Run("OutputFile", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "statement.json")

		stdout, _, err := run(t, "convert", "-o", out, writeFile(t, "a.ofx", statement))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Wrote")

		content, err := os.ReadFile(out)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), "{\n  \"header\": {"))
	})
}

func TestReportCmd(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		stdout, _, err := run(t, "report", writeFile(t, "a.ofx", statement))
		assert.NoError(t, err)

		assert.Contains(t, stdout, "Bank: 999 | Account: 12345-6 | Type: CHECKING\n")
		assert.Contains(t, stdout, "Total Income        $100.00 (71.43%)\n")
		assert.Contains(t, stdout, "Total Expenses      $40.00 (28.57%)\n")
		assert.Contains(t, stdout, "Net Balance         $60.00\n")
		assert.Contains(t, stdout, "Total Transactions  2\n")
		assert.Contains(t, stdout, "Type                DEBIT 1 · CREDIT 1\n")
		assert.Contains(t, stdout, "Date        Type     Amount  Description\n")
		assert.Contains(t, stdout, "2025-04-02  DEBIT   -$40.00  Groceries\n")
		assert.Contains(t, stdout, "2025-04-01  CREDIT  $100.00  Salary\n")
	})

	t.Run("Filter", func(t *testing.T) {
		stdout, _, err := run(t, "report", "--filter", "credit", writeFile(t, "a.ofx", statement))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Salary")
		assert.NotContains(t, stdout, "Groceries")
	})

	t.Run("Limit", func(t *testing.T) {
		stdout, _, err := run(t, "report", "--limit", "1", writeFile(t, "a.ofx", statement))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Groceries")
		assert.NotContains(t, stdout, "Salary")
	})

	t.Run("JSON", func(t *testing.T) {
		stdout, _, err := run(t, "report", "--json", "--filter", "DEBIT", writeFile(t, "a.ofx", statement))
		assert.NoError(t, err)

		var rep map[string]any
		assert.NoError(t, json.Unmarshal([]byte(stdout), &rep))
		assert.Equal[any](t, float64(2), rep["total_transactions"])
		assert.Equal(t, "60", rep["net_balance"])
		assert.Equal(t, 1, len(rep["transactions"].([]any)))
	})

	t.Run("Locale", func(t *testing.T) {
		brl := strings.Replace(statement, "<CURDEF>USD", "<CURDEF>BRL", 1)

		stdout, _, err := run(t, "--locale", "pt-BR", "report", writeFile(t, "a.ofx", brl))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Banco: 999 | Conta: 12345-6 | Tipo: CHECKING\n")
		assert.Contains(t, stdout, "Receita Total")
		assert.Contains(t, stdout, "R$ 100,00")
		assert.Contains(t, stdout, "-R$ 40,00")
	})

	t.Run("Empty", func(t *testing.T) {
		stdout, _, err := run(t, "report", writeFile(t, "a.ofx", "<OFX>\n</OFX>\n"))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Total Transactions  0\n")
		assert.Contains(t, stdout, "No transactions found")
	})
}

func TestDoctorCmd(t *testing.T) {
	t.Run("Lex", func(t *testing.T) {
		stdout, _, err := run(t, "doctor", "lex", writeFile(t, "a.ofx", "OFXHEADER:100\n<OFX>\n  <CODE>0\n<DTSERVER>20250401</DTSERVER>\n</OFX>"))
		assert.NoError(t, err)
		assert.Equal(t, `PLAIN    1:1    "OFXHEADER:100"
OPEN     2:1    OFX
SGML     3:3    CODE "0"
INLINE   4:1    DTSERVER "20250401"
CLOSE    5:1    OFX
`, stdout)
	})

	t.Run("Tree", func(t *testing.T) {
		stdout, _, err := run(t, "doctor", "tree", writeFile(t, "a.ofx", "<OFX>\n<CODE>0\n</OFX>"))
		assert.NoError(t, err)
		assert.Contains(t, stdout, "ast.Document")
		assert.Contains(t, stdout, `"OFX"`)
		assert.Contains(t, stdout, `"CODE"`)
	})

	t.Run("Describe", func(t *testing.T) {
		stdout, _, err := run(t, "doctor", "describe", "stmttrn", "DIRECTDEP")
		assert.NoError(t, err)
		assert.Contains(t, stdout, "STMTTRN ")
		assert.Contains(t, stdout, "DIRECTDEP ")
		assert.Equal(t, 2, strings.Count(stdout, "\n"))
	})

	t.Run("DescribeUnknown", func(t *testing.T) {
		stdout, _, err := run(t, "doctor", "describe", "NOPE")
		assertExitCode(t, ExitProblems, err)
		assert.Contains(t, stdout, "unknown tag")
	})

	t.Run("DescribeFile", func(t *testing.T) {
		stdout, _, err := run(t, "doctor", "describe", "--file", writeFile(t, "a.ofx", statement))
		assert.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		assert.True(t, strings.HasPrefix(lines[0], "OFX "))
		assert.Contains(t, stdout, "BANKTRANLIST")
		assert.Contains(t, stdout, "CREDIT")
	})
}

func TestUsedTags(t *testing.T) {
	isolateEnv(t)

	var f FileOrStdin
	f.Filename = writeFile(t, "a.ofx", "<OFX>\n<STMTTRN>\n<TRNTYPE>DEBIT\n</STMTTRN>\n<STMTTRN>\n<TRNTYPE>DEBIT\n</STMTTRN>\n</OFX>")

	var g Globals
	cfg, err := g.Config()
	assert.NoError(t, err)

	stmt, err := f.Load(t.Context(), g.Loader(cfg))
	assert.NoError(t, err)
	assert.Equal(t, []string{"OFX", "STMTTRN", "TRNTYPE", "DEBIT"}, usedTags(stmt.Document))
}
