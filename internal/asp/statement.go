package asp

import (
	"fmt"
	"strings"
)

// Location is a position in an input file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Statement is a single statement of a program.
type Statement interface {
	fmt.Stringer
	// Pos returns where the statement starts in its source file.
	Pos() Location
}

type located struct {
	Loc Location
}

func (l located) Pos() Location { return l.Loc }

// Fact is a rule with an unconditional head and empty body.
type Fact struct {
	located
	Head Atom
}

func (f *Fact) String() string { return f.Head.String() + "." }

// Rule is a normal rule head :- body.
type Rule struct {
	located
	Head Atom
	Body []BodyElement
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s :- %s.", r.Head.String(), bodyString(r.Body))
}

// Constraint is an integrity constraint :- body.
type Constraint struct {
	located
	Body []BodyElement
}

func (c *Constraint) String() string {
	return fmt.Sprintf(":- %s.", bodyString(c.Body))
}

// Choice is a choice rule {a1; ...; an} optionally guarded by a body.
type Choice struct {
	located
	Elements []Atom
	Body     []BodyElement
}

func (c *Choice) String() string {
	parts := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		parts[i] = e.String()
	}
	head := "{" + strings.Join(parts, "; ") + "}"
	if len(c.Body) == 0 {
		return head + "."
	}
	return fmt.Sprintf("%s :- %s.", head, bodyString(c.Body))
}

// Const is a #const name=term. directive.
type Const struct {
	located
	Name  string
	Value Term
}

func (c *Const) String() string {
	return fmt.Sprintf("#const %s=%s.", c.Name, c.Value)
}

// Include is an #include "file". directive.
type Include struct {
	located
	Path string
}

func (i *Include) String() string {
	return fmt.Sprintf("#include %q.", i.Path)
}

// Optimize is a #minimize or #maximize statement. The element text is
// kept verbatim; the explanation tools only ever strip these.
type Optimize struct {
	located
	Maximize bool
	Raw      string
}

func (o *Optimize) String() string {
	directive := "#minimize"
	if o.Maximize {
		directive = "#maximize"
	}
	return fmt.Sprintf("%s{%s}.", directive, o.Raw)
}

// Show is a #show directive, kept verbatim.
type Show struct {
	located
	Raw string
}

func (s *Show) String() string { return fmt.Sprintf("#show %s.", s.Raw) }

// Program is an ordered sequence of statements.
type Program struct {
	Statements []Statement
}

// String renders the program one statement per line.
func (p *Program) String() string {
	lines := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// Facts returns all fact statements of the program.
func (p *Program) Facts() []*Fact {
	var out []*Fact
	for _, s := range p.Statements {
		if f, ok := s.(*Fact); ok {
			out = append(out, f)
		}
	}
	return out
}

// Includes returns the paths of all #include directives.
func (p *Program) Includes() []string {
	var out []string
	for _, s := range p.Statements {
		if inc, ok := s.(*Include); ok {
			out = append(out, inc.Path)
		}
	}
	return out
}

func bodyString(body []BodyElement) string {
	parts := make([]string, len(body))
	for i, e := range body {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
