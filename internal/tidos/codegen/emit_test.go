package codegen

import (
	"errors"
	"go/parser"
	"strings"
	"testing"

	"github.com/kilianc/tidos/internal/tidos/ast"
	"github.com/kilianc/tidos/internal/tidos/source"
)

func TestExprLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{src: "", want: `""`},
		{src: `<br/>`, want: `"<br />"`},
		{src: `<p class="x">"a \"b\""</p>`, want: `"<p class=\"x\">a \"b\"</p>"`},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			got, err := Expr(lowerString(t, tc.src), Options{Runtime: "tidos"})
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Expr = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestExprIsGo(t *testing.T) {
	src := `<ul class="list">
		{#for i, x in items}
			<li :active={i == sel} data-i={fmt.Sprint(i)}>{x.Name} @html{x.Body}</li>
		{/for}
		{#for in 3}<hr/>{/for}
		{#for y in rows}<td>{y}</td>{/for}
		{#for _ in rows}<td/>{/for}
		{#if len(items) == 0}<p>none</p>{:else if len(items) > 9}<p>many</p>{:else}<p>some</p>{/if}
		{#match kind}{:case "a", "b"}ab{:case _}other{/match}
		<Card title={"t"} n={len(items)} />
	</ul>`
	got, err := Expr(lowerString(t, src), Options{Runtime: "tidos"})
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	if _, err := parser.ParseExpr(got); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, got)
	}
	for _, want := range []string{
		"var _tidos tidos.Buffer",
		"for i, x := range items {",
		"_ = i\n_ = x\n",
		"for range 3 {",
		"for _, y := range rows {\n_ = y\n",
		"for range rows {",
		`if i == sel {` + "\n" + `_tidos.WriteString(" active")`,
		`_tidos.WriteString(tidos.Escape(fmt.Sprint(i)))`,
		`_tidos.WriteString(x.Body)`,
		"} else if len(items) > 9 {",
		"} else {",
		"switch kind {",
		`case "a", "b":`,
		"default:",
		`_tidos.WriteString(tidos.Render(page, &Card{title: "t", n: len(items)}))`,
		"return _tidos.String()",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("generated code is missing %q\n%s", want, got)
		}
	}
}

func TestExprDotImport(t *testing.T) {
	got, err := Expr(lowerString(t, `<p>{x}</p>`), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "var _tidos Buffer") || !strings.Contains(got, "WriteString(Escape(x))") {
		t.Errorf("unqualified runtime names expected:\n%s", got)
	}
}

func TestExprRewrite(t *testing.T) {
	var seen []string
	opts := Options{
		Runtime: "tidos",
		Page:    "p",
		Rewrite: func(c ast.Code) (string, error) {
			seen = append(seen, c.Src)
			return strings.ToUpper(c.Src), nil
		},
	}
	got, err := Expr(lowerString(t, `<input :on /><Card a={x} />{y}`), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "tidos.Render(p, &Card{a: X})") || !strings.Contains(got, "tidos.Escape(Y)") || !strings.Contains(got, "if ON {") {
		t.Errorf("rewritten fragments not emitted:\n%s", got)
	}
	if strings.Join(seen, ",") != "on,x,y" {
		t.Errorf("rewrite saw %v", seen)
	}
}

func TestExprInvalid(t *testing.T) {
	src := `<p>{a +}</p>`
	_, err := Expr(lowerString(t, src), Options{Runtime: "tidos"})
	var se *source.Error
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *source.Error", err)
	}
	if !strings.HasPrefix(src[se.Span.Start:], "a +") {
		t.Errorf("error anchored at %q", src[se.Span.Start:])
	}
	if !strings.Contains(se.Msg, "invalid Go expression `a +`") {
		t.Errorf("msg = %q", se.Msg)
	}
}
