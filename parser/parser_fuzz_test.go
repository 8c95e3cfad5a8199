package parser

import (
	"context"
	"testing"

	"github.com/robinvdvleuten/ofx/ast"
)

func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"OFXHEADER:100\nDATA:OFXSGML",
		"A:1\nB:2\n\n<OFX>\n<X>5\n</OFX>",
		"<OFX>\n<STMTTRN>\n<TRNAMT>1\n</STMTTRN>\n<STMTTRN>\n<TRNAMT>2\n</STMTTRN>\n</OFX>",
		"<BANKID>999</BANKID>",
		"</OFX>\n</OFX>",
		"<A>\n<B>\n</A>",
		"<!-- comment -->\n<X>1,5",
		"\xEF\xBB\xBF<OFX>\r\n</OFX>\r\n",
	}
	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, opts := range [][]Option{nil, {WithStrictNesting()}} {
			doc, err := ParseBytes(context.Background(), data, opts...)
			if doc == nil {
				t.Fatalf("nil document for %q: %v", data, err)
			}
			if !doc.Body.Sealed() {
				t.Fatalf("body not sealed for %q", data)
			}
			if _, err := doc.Body.MarshalJSON(); err != nil {
				t.Fatalf("document does not marshal for %q: %v", data, err)
			}
			checkSealed(t, doc.Body)
		}
	})
}

func checkSealed(t *testing.T, obj *ast.Object) {
	t.Helper()
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		for _, item := range ast.Items(v) {
			if child, ok := item.(*ast.Object); ok {
				if !child.Sealed() {
					t.Fatalf("container %s left unsealed", key)
				}
				checkSealed(t, child)
			}
		}
	}
}
