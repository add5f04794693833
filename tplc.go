// Package tplc compiles markup templates into Go text/template programs.
//
// Templates mix HTML with embedded expressions and a component system:
//
//	<use:element path="ui/card" as="card"/>
//	<card title="Hello">
//	    <p>{{ .Body }}</p>
//	    @if(.Admin)<a href="/edit">edit</a>@endif
//	</card>
//
// Compilation runs in stages: context-sensitive lexing, parsing into an AST,
// import resolution (components are inlined into their slots), and code
// generation. The result carries a source map so that errors raised while
// executing the generated program can be traced back through every level of
// imports.
//
// # Basic Usage
//
//	engine := tplc.MustNew(tplc.WithLoader(tplc.NewFileLoader("templates")))
//	compiled, err := engine.Compile("pages/home")
//	if err != nil {
//	    return err
//	}
//	tmpl := template.Must(template.New("home").Parse(compiled.Content))
//	if err := tmpl.Execute(w, data); err != nil {
//	    return compiled.MapTemplateError(err)
//	}
//
// # Template Syntax
//
// Escaped output uses {{ expr }}, raw output {!! expr !!}. A trailing
// "| name" selects a registered output filter. Directives such as
// @if(cond), @else, @endif and @foreach(list) become control actions.
// ${name|default} and <block:name>default</block:name> declare slots.
//
// # Imports
//
// Tags qualified with a namespace (prefix:name) are resolved by import
// providers. WithDirectory maps a namespace to a directory of templates and
// WithBundle maps a single tag name to a template. Templates can declare
// their own providers with <use:element/> and <use:dir/>, and inherit a
// layout with <extends:layouts.base/>.
package tplc
