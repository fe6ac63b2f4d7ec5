//go:build cgo

package parser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"docdelta/internal/codebase"
	"docdelta/internal/errors"
)

// IsAvailable returns whether parsing is available in this build.
func IsAvailable() bool {
	return true
}

// Parse parses every supported file under dir and returns a graded
// snapshot. Files that cannot be read are skipped with a warning.
func (p *Parser) Parse(ctx context.Context, dir string) (*codebase.Snapshot, error) {
	files, err := p.sourceFiles(dir)
	if err != nil {
		return nil, errors.New(errors.ParserError, "failed to list source files", err, nil).
			WithDetails(map[string]string{"dir": dir})
	}

	ts := sitter.NewParser()
	set := newObjectSet()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.parseFile(ctx, ts, f, set); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("Skipping file", "file", f.rel, "error", err)
		}
	}

	objects := set.finish()
	p.grader.EvaluateAll(objects)

	snap, err := codebase.NewSnapshot(objects)
	if err != nil {
		return nil, errors.New(errors.ParserError, "failed to build snapshot", err, nil).
			WithDetails(map[string]string{"dir": dir})
	}

	p.logger.Debug("Parsed directory", "dir", dir, "files", len(files), "objects", snap.Len())
	return snap, nil
}

func (p *Parser) parseFile(ctx context.Context, ts *sitter.Parser, f sourceFile, set *objectSet) error {
	source, err := os.ReadFile(f.abs)
	if err != nil {
		return err
	}

	tsLang, err := getLanguage(f.lang)
	if err != nil {
		return err
	}
	ts.SetLanguage(tsLang)

	tree, err := ts.ParseCtx(ctx, nil, source)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	fc := &fileContext{
		lang:   f.lang,
		path:   f.rel,
		source: source,
		lines:  strings.Split(string(source), "\n"),
		set:    set,
	}
	root := tree.RootNode()

	switch f.lang {
	case LangGo:
		fc.walkGo(root)
	case LangPython:
		fc.module = moduleFromPath(f.rel, f.lang)
		fc.walkPython(root)
	case LangJavaScript, LangTypeScript, LangTSX:
		fc.module = moduleFromPath(f.rel, f.lang)
		fc.walkJS(root, fc.module)
	case LangJava:
		fc.walkJava(root)
	case LangKotlin:
		fc.walkKotlin(root)
	case LangRust:
		fc.module = moduleFromPath(f.rel, f.lang)
		fc.walkRust(root, fc.module)
	}
	return nil
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// fileContext carries per-file state while walking one syntax tree.
type fileContext struct {
	lang   Language
	path   string
	source []byte
	lines  []string
	module string
	set    *objectSet
}

func (fc *fileContext) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(fc.source)
}

// leading returns the comment block above n.
func (fc *fileContext) leading(n *sitter.Node) string {
	return leadingComment(fc.lines, int(n.StartPoint().Row), fc.lang)
}

type objectSpec struct {
	node      *sitter.Node // declaration, used for line and source
	name      string
	fullname  string
	kind      codebase.Kind
	container string
	exported  bool
	params    []string
	returns   bool
	doc       string
}

func (fc *fileContext) add(s objectSpec) {
	if s.name == "" {
		return
	}
	o := &codebase.Object{
		Fullname:  s.fullname,
		Name:      s.name,
		Kind:      s.kind,
		Language:  string(fc.lang),
		File:      fc.path,
		Line:      int(s.node.StartPoint().Row) + 1,
		Container: s.container,
		Exported:  s.exported,
		Params:    s.params,
		Returns:   s.returns,
		Doc:       s.doc,
	}
	if s.kind == codebase.KindMethod || s.kind == codebase.KindFunction {
		o.Source = fc.text(s.node)
	}
	fc.set.add(o)
}

// Go

func (fc *fileContext) walkGo(root *sitter.Node) {
	pkg := firstChildOfType(root, "package_clause")
	pkgName := fc.text(firstChildOfType(pkg, "package_identifier"))
	fc.module = moduleFromPath(fc.path, LangGo)
	if fc.module == "" {
		fc.module = pkgName
	}
	if pkg != nil {
		fc.add(objectSpec{
			node: pkg, name: pkgName, fullname: fc.module,
			kind: codebase.KindModule, exported: true, doc: fc.leading(pkg),
		})
	}

	for _, n := range namedChildren(root) {
		switch n.Type() {
		case "type_declaration":
			grouped := firstChildOfType(n, "(") != nil
			for _, spec := range namedChildren(n) {
				if spec.Type() != "type_spec" && spec.Type() != "type_alias" {
					continue
				}
				name := fc.text(spec.ChildByFieldName("name"))
				docNode := n
				if grouped {
					docNode = spec
				}
				fc.add(objectSpec{
					node: n, name: name, fullname: join(fc.module, name),
					kind: codebase.KindClass, container: fc.module,
					exported: goExported(name), doc: fc.leading(docNode),
				})
			}

		case "function_declaration":
			name := fc.text(n.ChildByFieldName("name"))
			fc.add(objectSpec{
				node: n, name: name, fullname: join(fc.module, name),
				kind: codebase.KindFunction, container: fc.module,
				exported: goExported(name),
				params:   fc.goParams(n.ChildByFieldName("parameters")),
				returns:  n.ChildByFieldName("result") != nil,
				doc:      fc.leading(n),
			})

		case "method_declaration":
			name := fc.text(n.ChildByFieldName("name"))
			recv := fc.goReceiverType(n.ChildByFieldName("receiver"))
			if recv == "" {
				continue
			}
			container := join(fc.module, recv)
			fc.add(objectSpec{
				node: n, name: name, fullname: methodName(container, name),
				kind: codebase.KindMethod, container: container,
				exported: goExported(name) && goExported(recv),
				params:   fc.goParams(n.ChildByFieldName("parameters")),
				returns:  n.ChildByFieldName("result") != nil,
				doc:      fc.leading(n),
			})
		}
	}
}

func (fc *fileContext) goParams(list *sitter.Node) []string {
	var params []string
	for _, decl := range namedChildren(list) {
		if decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration" {
			continue
		}
		for _, c := range namedChildren(decl) {
			if c.Type() == "identifier" && fc.text(c) != "_" {
				params = append(params, fc.text(c))
			}
		}
	}
	return params
}

func (fc *fileContext) goReceiverType(list *sitter.Node) string {
	decl := firstChildOfType(list, "parameter_declaration")
	if decl == nil {
		return ""
	}
	t := decl.ChildByFieldName("type")
	for t != nil {
		switch t.Type() {
		case "pointer_type", "parenthesized_type":
			t = t.NamedChild(0)
		case "generic_type":
			t = t.ChildByFieldName("type")
		default:
			return fc.text(t)
		}
	}
	return ""
}

func goExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// Python

func (fc *fileContext) walkPython(root *sitter.Node) {
	fc.add(objectSpec{
		node: root, name: pathBase(fc.module), fullname: fc.module,
		kind: codebase.KindModule, exported: true, doc: fc.pyDocstring(root),
	})
	fc.walkPythonBlock(root, fc.module, false)
}

func (fc *fileContext) walkPythonBlock(block *sitter.Node, container string, inClass bool) {
	for _, n := range namedChildren(block) {
		if n.Type() == "decorated_definition" {
			if def := n.ChildByFieldName("definition"); def != nil {
				n = def
			}
		}

		switch n.Type() {
		case "class_definition":
			name := fc.text(n.ChildByFieldName("name"))
			fullname := join(container, name)
			fc.add(objectSpec{
				node: n, name: name, fullname: fullname,
				kind: codebase.KindClass, container: container,
				exported: pyExported(name), doc: fc.pyDocstring(n.ChildByFieldName("body")),
			})
			fc.walkPythonBlock(n.ChildByFieldName("body"), fullname, true)

		case "function_definition":
			name := fc.text(n.ChildByFieldName("name"))
			spec := objectSpec{
				node: n, name: name, container: container,
				exported: pyExported(name),
				params:   fc.pyParams(n.ChildByFieldName("parameters")),
				returns: n.ChildByFieldName("return_type") != nil ||
					returnsValue(n.ChildByFieldName("body"), pyScopes),
				doc: fc.pyDocstring(n.ChildByFieldName("body")),
			}
			if inClass {
				spec.kind, spec.fullname = codebase.KindMethod, methodName(container, name)
			} else {
				spec.kind, spec.fullname = codebase.KindFunction, join(container, name)
			}
			if spec.doc == "" {
				spec.doc = fc.leading(n)
			}
			fc.add(spec)
		}
	}
}

// pyDocstring returns the docstring of a module or block.
func (fc *fileContext) pyDocstring(block *sitter.Node) string {
	for _, n := range namedChildren(block) {
		if n.Type() == "comment" {
			continue
		}
		if n.Type() == "expression_statement" {
			if s := n.NamedChild(0); s != nil && s.Type() == "string" {
				return cleanDocstring(fc.text(s))
			}
		}
		return ""
	}
	return ""
}

func (fc *fileContext) pyParams(list *sitter.Node) []string {
	var params []string
	for _, p := range namedChildren(list) {
		var name string
		switch p.Type() {
		case "identifier":
			name = fc.text(p)
		case "default_parameter", "typed_default_parameter":
			name = fc.text(p.ChildByFieldName("name"))
		case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
			name = fc.text(firstDescendantOfType(p, "identifier"))
		}
		if name != "" && name != "self" && name != "cls" {
			params = append(params, name)
		}
	}
	return params
}

func pyExported(name string) bool {
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	return !strings.HasPrefix(name, "_")
}

var pyScopes = map[string]bool{
	"function_definition": true, "class_definition": true, "lambda": true,
}

// JavaScript and TypeScript

var jsScopes = map[string]bool{
	"function_declaration": true, "function_expression": true, "function": true,
	"arrow_function": true, "method_definition": true, "class_declaration": true,
	"class": true, "generator_function_declaration": true,
}

func (fc *fileContext) walkJS(block *sitter.Node, container string) {
	for _, n := range namedChildren(block) {
		target, exported, docNode := n, false, n
		if n.Type() == "export_statement" {
			exported = true
			target = n.ChildByFieldName("declaration")
			if target == nil {
				continue
			}
		}

		switch target.Type() {
		case "class_declaration", "abstract_class_declaration", "interface_declaration":
			name := fc.text(target.ChildByFieldName("name"))
			fullname := join(container, name)
			fc.add(objectSpec{
				node: target, name: name, fullname: fullname,
				kind: codebase.KindClass, container: container,
				exported: exported, doc: fc.leading(docNode),
			})
			fc.walkJSClassBody(target.ChildByFieldName("body"), fullname, exported)

		case "function_declaration", "generator_function_declaration":
			name := fc.text(target.ChildByFieldName("name"))
			fc.add(fc.jsFunction(target, docNode, name, join(container, name), container, codebase.KindFunction, exported))

		case "lexical_declaration", "variable_declaration":
			for _, decl := range namedChildren(target) {
				if decl.Type() != "variable_declarator" {
					continue
				}
				value := decl.ChildByFieldName("value")
				if value == nil || !jsScopes[value.Type()] || value.Type() == "class" {
					continue
				}
				name := fc.text(decl.ChildByFieldName("name"))
				spec := fc.jsFunction(value, docNode, name, join(container, name), container, codebase.KindFunction, exported)
				spec.node = target
				fc.add(spec)
			}
		}
	}
}

func (fc *fileContext) walkJSClassBody(body *sitter.Node, class string, classExported bool) {
	for _, m := range namedChildren(body) {
		switch m.Type() {
		case "method_definition", "method_signature", "abstract_method_signature":
			name := fc.text(m.ChildByFieldName("name"))
			exported := classExported && !strings.HasPrefix(name, "#") &&
				!strings.Contains(fc.text(firstChildOfType(m, "accessibility_modifier")), "private")
			fc.add(fc.jsFunction(m, m, name, methodName(class, name), class, codebase.KindMethod, exported))
		}
	}
}

func (fc *fileContext) jsFunction(fn, docNode *sitter.Node, name, fullname, container string, kind codebase.Kind, exported bool) objectSpec {
	body := fn.ChildByFieldName("body")
	returns := fn.ChildByFieldName("return_type") != nil || returnsValue(body, jsScopes)
	if fn.Type() == "arrow_function" && body != nil && body.Type() != "statement_block" {
		returns = true
	}

	return objectSpec{
		node: fn, name: name, fullname: fullname, kind: kind, container: container,
		exported: exported,
		params:   fc.jsParams(fn),
		returns:  returns,
		doc:      fc.leading(docNode),
	}
}

func (fc *fileContext) jsParams(fn *sitter.Node) []string {
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		// Single-parameter arrow functions: x => x * 2
		if p := fn.ChildByFieldName("parameter"); p != nil {
			return []string{fc.text(p)}
		}
		return nil
	}

	var params []string
	for _, p := range namedChildren(list) {
		var name string
		switch p.Type() {
		case "identifier":
			name = fc.text(p)
		case "assignment_pattern":
			name = fc.text(p.ChildByFieldName("left"))
		case "required_parameter", "optional_parameter":
			pattern := p.ChildByFieldName("pattern")
			if pattern != nil && pattern.Type() == "identifier" {
				name = fc.text(pattern)
			} else {
				name = fc.text(firstDescendantOfType(pattern, "identifier"))
			}
		case "rest_pattern":
			name = fc.text(firstDescendantOfType(p, "identifier"))
		}
		if name != "" && name != "this" {
			params = append(params, name)
		}
	}
	return params
}

// Java

func (fc *fileContext) walkJava(root *sitter.Node) {
	if pkg := firstChildOfType(root, "package_declaration"); pkg != nil {
		if id := pkg.NamedChild(0); id != nil {
			fc.module = fc.text(id)
		}
	} else {
		fc.module = moduleFromPath(fc.path, LangJava)
	}
	fc.walkJavaBody(root, fc.module, false)
}

func (fc *fileContext) walkJavaBody(body *sitter.Node, container string, inInterface bool) {
	for _, n := range namedChildren(body) {
		switch n.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			name := fc.text(n.ChildByFieldName("name"))
			fullname := join(container, name)
			fc.add(objectSpec{
				node: n, name: name, fullname: fullname,
				kind: codebase.KindClass, container: container,
				exported: inInterface || fc.hasModifier(n, "public"),
				doc:      fc.leading(n),
			})
			fc.walkJavaBody(n.ChildByFieldName("body"), fullname, n.Type() == "interface_declaration")

		case "enum_body_declarations":
			fc.walkJavaBody(n, container, inInterface)

		case "method_declaration", "constructor_declaration":
			name := fc.text(n.ChildByFieldName("name"))
			returns := false
			if t := n.ChildByFieldName("type"); t != nil && fc.text(t) != "void" {
				returns = true
			}
			fc.add(objectSpec{
				node: n, name: name, fullname: methodName(container, name),
				kind: codebase.KindMethod, container: container,
				exported: inInterface || fc.hasModifier(n, "public"),
				params:   fc.javaParams(n.ChildByFieldName("parameters")),
				returns:  returns,
				doc:      fc.leading(n),
			})
		}
	}
}

func (fc *fileContext) javaParams(list *sitter.Node) []string {
	var params []string
	for _, p := range namedChildren(list) {
		switch p.Type() {
		case "formal_parameter":
			params = append(params, fc.text(p.ChildByFieldName("name")))
		case "spread_parameter":
			if d := firstChildOfType(p, "variable_declarator"); d != nil {
				params = append(params, fc.text(d.ChildByFieldName("name")))
			}
		}
	}
	return params
}

// hasModifier reports whether the modifiers of n contain word.
func (fc *fileContext) hasModifier(n *sitter.Node, word string) bool {
	mods := firstChildOfType(n, "modifiers")
	if mods == nil {
		return false
	}
	for _, f := range strings.Fields(fc.text(mods)) {
		if f == word {
			return true
		}
	}
	return false
}

// Kotlin

func (fc *fileContext) walkKotlin(root *sitter.Node) {
	if pkg := firstChildOfType(root, "package_header"); pkg != nil {
		fc.module = fc.text(firstChildOfType(pkg, "identifier"))
	} else {
		fc.module = moduleFromPath(fc.path, LangKotlin)
	}
	fc.walkKotlinBody(root, fc.module, false)
}

func (fc *fileContext) walkKotlinBody(body *sitter.Node, container string, inClass bool) {
	for _, n := range namedChildren(body) {
		switch n.Type() {
		case "class_declaration", "object_declaration":
			name := fc.text(firstChildOfType(n, "type_identifier", "simple_identifier", "identifier"))
			fullname := join(container, name)
			fc.add(objectSpec{
				node: n, name: name, fullname: fullname,
				kind: codebase.KindClass, container: container,
				exported: fc.kotlinExported(n), doc: fc.leading(n),
			})
			if b := firstChildOfType(n, "class_body", "enum_class_body"); b != nil {
				fc.walkKotlinBody(b, fullname, true)
			}

		case "function_declaration":
			name := fc.text(firstChildOfType(n, "simple_identifier"))
			spec := objectSpec{
				node: n, name: name, container: container,
				exported: fc.kotlinExported(n),
				params:   fc.kotlinParams(firstChildOfType(n, "function_value_parameters")),
				returns:  firstChildOfType(n, "user_type", "nullable_type", "function_type") != nil,
				doc:      fc.leading(n),
			}
			if inClass {
				spec.kind, spec.fullname = codebase.KindMethod, methodName(container, name)
			} else {
				spec.kind, spec.fullname = codebase.KindFunction, join(container, name)
			}
			fc.add(spec)
		}
	}
}

func (fc *fileContext) kotlinParams(list *sitter.Node) []string {
	var params []string
	for _, p := range namedChildren(list) {
		if p.Type() != "parameter" {
			continue
		}
		if id := firstChildOfType(p, "simple_identifier"); id != nil {
			params = append(params, fc.text(id))
		}
	}
	return params
}

func (fc *fileContext) kotlinExported(n *sitter.Node) bool {
	return !fc.hasModifier(n, "private") && !fc.hasModifier(n, "internal")
}

// Rust

func (fc *fileContext) walkRust(root *sitter.Node, container string) {
	if root.Type() == "source_file" {
		fc.add(objectSpec{
			node: root, name: pathBase(fc.module), fullname: fc.module,
			kind: codebase.KindModule, exported: true, doc: innerDoc(fc.lines),
		})
	}

	for _, n := range namedChildren(root) {
		switch n.Type() {
		case "struct_item", "enum_item", "union_item", "type_item":
			name := fc.text(n.ChildByFieldName("name"))
			fc.add(objectSpec{
				node: n, name: name, fullname: join(container, name),
				kind: codebase.KindClass, container: container,
				exported: rustExported(n), doc: fc.leading(n),
			})

		case "trait_item":
			name := fc.text(n.ChildByFieldName("name"))
			fullname := join(container, name)
			fc.add(objectSpec{
				node: n, name: name, fullname: fullname,
				kind: codebase.KindClass, container: container,
				exported: rustExported(n), doc: fc.leading(n),
			})
			fc.walkRustMethods(n.ChildByFieldName("body"), fullname, rustExported(n))

		case "impl_item":
			typeName := fc.rustTypeName(n.ChildByFieldName("type"))
			if typeName == "" {
				continue
			}
			traitImpl := n.ChildByFieldName("trait") != nil
			fc.walkRustMethods(n.ChildByFieldName("body"), join(container, typeName), traitImpl)

		case "function_item":
			name := fc.text(n.ChildByFieldName("name"))
			fc.add(fc.rustFunction(n, name, join(container, name), container, codebase.KindFunction, rustExported(n)))

		case "mod_item":
			if body := n.ChildByFieldName("body"); body != nil {
				fc.walkRust(body, join(container, fc.text(n.ChildByFieldName("name"))))
			}
		}
	}
}

func (fc *fileContext) walkRustMethods(body *sitter.Node, container string, public bool) {
	for _, m := range namedChildren(body) {
		if m.Type() != "function_item" && m.Type() != "function_signature_item" {
			continue
		}
		name := fc.text(m.ChildByFieldName("name"))
		fc.add(fc.rustFunction(m, name, methodName(container, name), container, codebase.KindMethod, public || rustExported(m)))
	}
}

func (fc *fileContext) rustFunction(n *sitter.Node, name, fullname, container string, kind codebase.Kind, exported bool) objectSpec {
	var params []string
	for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
		if p.Type() == "parameter" {
			if pat := p.ChildByFieldName("pattern"); pat != nil {
				params = append(params, strings.TrimPrefix(fc.text(pat), "mut "))
			}
		}
	}
	return objectSpec{
		node: n, name: name, fullname: fullname, kind: kind, container: container,
		exported: exported,
		params:   params,
		returns:  n.ChildByFieldName("return_type") != nil,
		doc:      fc.leading(n),
	}
}

func (fc *fileContext) rustTypeName(t *sitter.Node) string {
	for t != nil {
		switch t.Type() {
		case "generic_type":
			t = t.ChildByFieldName("type")
		case "scoped_type_identifier":
			t = t.ChildByFieldName("name")
		case "reference_type":
			t = t.ChildByFieldName("type")
		default:
			return fc.text(t)
		}
	}
	return ""
}

func rustExported(n *sitter.Node) bool {
	return firstChildOfType(n, "visibility_modifier") != nil
}

// Tree helpers

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// firstChildOfType returns the first direct child of one of the types.
func firstChildOfType(n *sitter.Node, types ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

// firstDescendantOfType searches n breadth-first.
func firstDescendantOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	queue := []*sitter.Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Type() == typ {
			return cur
		}
		queue = append(queue, namedChildren(cur)...)
	}
	return nil
}

// returnsValue reports whether body contains a return statement with a
// value, not counting nested scopes.
func returnsValue(body *sitter.Node, scopes map[string]bool) bool {
	if body == nil {
		return false
	}
	stack := namedChildren(body)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if scopes[n.Type()] {
			continue
		}
		if n.Type() == "return_statement" && n.NamedChildCount() > 0 {
			return true
		}
		stack = append(stack, namedChildren(n)...)
	}
	return false
}

func pathBase(name string) string {
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}
