// Package rewrite records structural edits against an immutable syntax
// tree and turns them into a minimal Text Edit Tree over the original
// buffer.
//
// A Rewriter is an edit session. Clients remove, replace and modify
// original nodes, set single-valued properties, and edit list properties
// through ListRewrite. New nodes are built detached with syntax.New or a
// binding's constructors; existing content is reused through copy and
// move placeholders. Nothing is rendered until Rewrite is called, at which
// point every pending edit is resolved in a single walk of the original
// tree:
//
//	rw := rewrite.New(tree, curly.NewFormatter())
//	body := fn.Child(curly.FuncBody)
//	p, err := rw.MovePlaceholder(stmt, rewrite.WithTrailingComment())
//	...
//	err = rw.List(body, curly.BlockStmts).InsertLast(p)
//	...
//	res, err := rw.Rewrite()
//	out, err := res.Apply(tree.Content)
//
// Text outside edited regions is never touched. Removed list elements take
// their separators with them, inserted elements get the separators and
// indentation of their list, and comments are kept unless they travel with
// a moved node. Tracked nodes report their final range in the result.
package rewrite
