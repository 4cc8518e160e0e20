// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"io"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// HCL descriptor files use labelled blocks:
//
//	command "ls" {
//	  summary = "List a directory."
//
//	  arg "path" {
//	    position = 0
//	    type     = "string"
//	    default  = "."
//	  }
//
//	  option {
//	    short = "o"
//	    long  = "output"
//	  }
//	}
type (
	hclFile struct {
		Commands []*hclCommand `hcl:"command,block"`
	}

	hclCommand struct {
		Name    string         `hcl:"name,label"`
		Handler string         `hcl:"handler,optional"`
		Method  string         `hcl:"method,optional"`
		Summary string         `hcl:"summary,optional"`
		Args    []*hclArgument `hcl:"arg,block"`
		Options []*hclOption   `hcl:"option,block"`
	}

	hclArgument struct {
		Name       string  `hcl:"name,label"`
		Position   int     `hcl:"position"`
		Type       string  `hcl:"type"`
		Default    *string `hcl:"default,optional"`
		Summary    string  `hcl:"summary,optional"`
		Constraint string  `hcl:"constraint,optional"`
	}

	hclOption struct {
		Short      string `hcl:"short,optional"`
		Long       string `hcl:"long,optional"`
		Field      string `hcl:"field,optional"`
		Summary    string `hcl:"summary,optional"`
		Constraint string `hcl:"constraint,optional"`
	}
)

func decodeHCL(name string, data []byte) (Set, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return Set{}, diags
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return Set{}, diags
	}

	set := Set{Commands: make([]Command, 0, len(parsed.Commands))}
	for _, hc := range parsed.Commands {
		cmd := Command{
			Name:    hc.Name,
			Handler: hc.Handler,
			Method:  hc.Method,
			Summary: hc.Summary,
		}
		for _, ha := range hc.Args {
			cmd.Args = append(cmd.Args, Argument{
				Name:       ha.Name,
				Position:   ha.Position,
				Type:       ha.Type,
				Default:    ha.Default,
				Summary:    ha.Summary,
				Constraint: ha.Constraint,
			})
		}
		for _, ho := range hc.Options {
			cmd.Options = append(cmd.Options, Option(*ho))
		}
		set.Commands = append(set.Commands, cmd)
	}
	return set, nil
}

func encodeHCL(w io.Writer, set Set) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, c := range set.Commands {
		if i > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock("command", []string{c.Name}).Body()
		setString(body, "handler", c.Handler)
		setString(body, "method", c.Method)
		setString(body, "summary", c.Summary)

		for _, a := range c.Args {
			body.AppendNewline()
			ab := body.AppendNewBlock("arg", []string{a.Name}).Body()
			ab.SetAttributeValue("position", cty.NumberIntVal(int64(a.Position)))
			ab.SetAttributeValue("type", cty.StringVal(a.Type))
			if a.Default != nil {
				ab.SetAttributeValue("default", cty.StringVal(*a.Default))
			}
			setString(ab, "summary", a.Summary)
			setString(ab, "constraint", a.Constraint)
		}

		for _, o := range c.Options {
			body.AppendNewline()
			ob := body.AppendNewBlock("option", nil).Body()
			setString(ob, "short", o.Short)
			setString(ob, "long", o.Long)
			setString(ob, "field", o.Field)
			setString(ob, "summary", o.Summary)
			setString(ob, "constraint", o.Constraint)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func setString(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}
