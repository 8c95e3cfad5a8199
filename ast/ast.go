// Package ast declares the tree produced by parsing an OFX statement.
//
// A Document pairs the ordered header lines with a body tree. Tree nodes are a
// closed set of variants: Number and String leaves, ordered Objects created by
// container tags, and Lists that only appear when the same tag repeats inside
// one container. Use Items to iterate a value that may or may not be repeated:
//
//	doc, _ := parser.ParseString(ctx, source)
//	list, _ := ast.Lookup(doc.Body, "OFX", "BANKMSGSRSV1", "STMTTRNRS")
//	for _, stmt := range ast.Items(list) {
//		// ...
//	}
//
// Objects are sealed once their container closes, so a returned Document is
// never modified again.
package ast
