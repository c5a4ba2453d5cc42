// Package subcmd builds flag sets for the artistgraph subcommands, with a
// usage message that names the positional argument if there is one.
package subcmd

import (
	"flag"
	"fmt"
	"strings"
)

func New(name, doc string) *Subcommand {
	sc := &Subcommand{
		FlagSet: flag.NewFlagSet(name, flag.ContinueOnError),
	}
	sc.FlagSet.Usage = func() {
		w := sc.Output()
		argSuffix := ""
		if sc.arg != nil {
			argSuffix = fmt.Sprintf(" [<%s>]", sc.arg.name)
		}
		fmt.Fprintf(w, "\n%s\n\n", doc)
		fmt.Fprintf(w, "  artistgraph %s [flags]%s\n\n", name, argSuffix)
		fmt.Fprintf(w, "flags:\n")
		sc.FlagSet.PrintDefaults()
		if sc.arg != nil {
			fmt.Fprintf(w, "  <%s> %s\n", sc.arg.name, sc.arg.typename)
			fmt.Fprintf(w, "  \t%s\n", sc.arg.usage)
		}
	}
	return sc
}

type Subcommand struct {
	*flag.FlagSet
	arg *arg
}

type arg struct {
	name     string
	typename string
	usage    string
}

func (sc *Subcommand) SetArg(name, typname, usage string) *Subcommand {
	sc.arg = &arg{name, typname, usage}
	return sc
}

// Rest joins the positional arguments left after parsing, so that an
// unquoted multi-word argument still reads as one.
func (sc *Subcommand) Rest() string {
	return strings.Join(sc.Args(), " ")
}
