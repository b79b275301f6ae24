package runtime

import (
	"errors"
	"fmt"
	"maps"
	"regexp"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/domain"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Declaration builds a Stub. Validation errors accumulate and are reported
// together by Build.
type Declaration struct {
	agent *Agent
	desc  domain.Descriptor
	opts  config.Options
	errs  []error
}

// Declare starts the declaration of a stub named name.
func (a *Agent) Declare(name string) *Declaration {
	d := &Declaration{agent: a, desc: domain.Descriptor{Name: name, Returns: domain.KindUnknown}}
	if !identPattern.MatchString(name) {
		d.errs = append(d.errs, fmt.Errorf("invalid stub name %q", name))
	}
	return d
}

// Param appends a parameter. typ is the declared type shown to the model and
// may be empty.
func (d *Declaration) Param(name, typ string) *Declaration {
	if !identPattern.MatchString(name) {
		d.errs = append(d.errs, fmt.Errorf("stub %s: invalid parameter name %q", d.desc.Name, name))
	}
	for _, p := range d.desc.Params {
		if p.Name == name {
			d.errs = append(d.errs, fmt.Errorf("stub %s: duplicate parameter %q", d.desc.Name, name))
			break
		}
	}
	d.desc.Params = append(d.desc.Params, domain.Param{Name: name, Type: typ})
	return d
}

// Returns sets the result kind. An optional typeName, such as
// "tuple[str, str, str]", replaces the kind's name in the rendered signature.
func (d *Declaration) Returns(kind domain.ResultKind, typeName ...string) *Declaration {
	if kind < domain.KindUnknown || kind > domain.KindTuple {
		d.errs = append(d.errs, fmt.Errorf("stub %s: invalid result kind %d", d.desc.Name, kind))
	}
	d.desc.Returns = kind
	if len(typeName) > 0 {
		d.desc.ReturnType = typeName[0]
	}
	return d
}

// ReturnsType sets the result kind from a type name such as "list[int]".
func (d *Declaration) ReturnsType(typeName string) *Declaration {
	kind, ok := domain.ParseResultKind(typeName)
	if !ok {
		d.errs = append(d.errs, fmt.Errorf("stub %s: unsupported return type %q", d.desc.Name, typeName))
	}
	d.desc.Returns = kind
	d.desc.ReturnType = typeName
	return d
}

// Doc sets the documentation shown to the model, including any examples.
func (d *Declaration) Doc(text string) *Declaration {
	d.desc.Doc = text
	return d
}

// With adds options merged into the configuration for every call, e.g. a
// per-stub service or model.
func (d *Declaration) With(opts config.Options) *Declaration {
	if d.opts == nil {
		d.opts = config.Options{}
	}
	maps.Copy(d.opts, opts)
	return d
}

// Build validates the declaration and returns the Stub.
func (d *Declaration) Build() (*Stub, error) {
	if err := errors.Join(d.errs...); err != nil {
		return nil, err
	}
	desc := d.desc
	desc.Params = append([]domain.Param(nil), d.desc.Params...)
	return &Stub{
		agent: d.agent,
		desc:  desc,
		opts:  maps.Clone(d.opts),
	}, nil
}

// MustBuild is like Build but panics on an invalid declaration.
func (d *Declaration) MustBuild() *Stub {
	s, err := d.Build()
	if err != nil {
		panic(err)
	}
	return s
}
