package calcscript

import (
	"strconv"
	"strings"
)

// Calculator is a calculator session: a Runtime and the most recently
// parsed program. Assignments made by one evaluation are visible to the
// next. A Calculator is not safe for concurrent use.
type Calculator struct {
	rt     *Runtime
	src    string
	art    *Article
	diags  []InputError
	result Val
}

// New creates a session, then parses and evaluates input.
func New(input string, opts ...RuntimeOption) *Calculator {
	c := &Calculator{rt: NewRuntime(opts...)}
	c.Reparse(input)
	c.Reevaluate()
	return c
}

// Reparse replaces the pending program with input without evaluating it.
func (c *Calculator) Reparse(input string) {
	c.src = input
	c.art, c.diags = Parse(input)
	for _, d := range c.diags {
		c.rt.log.Print(d)
	}
}

// Reevaluate evaluates the pending program against the session's Runtime and
// returns the result, a tuple with one element per top-level sentence.
func (c *Calculator) Reevaluate() Val {
	c.result = c.art.Eval(c.rt)
	return c.result
}

// Result returns the result of the last evaluation.
func (c *Calculator) Result() Val {
	return c.result
}

// Source returns the text of the pending program.
func (c *Calculator) Source() string {
	return c.src
}

// Article returns the pending program.
func (c *Calculator) Article() *Article {
	return c.art
}

// Diagnostics returns the problems found parsing the pending program.
func (c *Calculator) Diagnostics() []InputError {
	return c.diags
}

// Runtime returns the session's Runtime.
func (c *Calculator) Runtime() *Runtime {
	return c.rt
}

// RenderResult formats the last result with one "[out N] value" line per
// top-level sentence, counting from 1.
func (c *Calculator) RenderResult() string {
	return RenderResult(c.result)
}

// RenderResult formats a result as "[out N] value" lines, one per element
// of a tuple. Any other value is formatted as a single line.
func RenderResult(v Val) string {
	vs := []Val{v}
	if v.Kind == KindVars {
		vs = v.Vars
	}
	var b strings.Builder
	for i, e := range vs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[out ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("] ")
		b.WriteString(Reduce(e).String())
	}
	return b.String()
}
