package bnb

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"git.solver4all.com/azaryc2s/cvrp/mip"
)

// WriteLP writes the model in CPLEX LP format. Lazy constraints collected by
// the last Optimize are written to a "Lazy Constraints" section.
func (e *Engine) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\\ Problem: %s\n", e.name)
	fmt.Fprintln(bw, "Minimize")
	var ind []int
	var val []float64
	for j, v := range e.vars {
		if v.obj != 0 {
			ind = append(ind, j)
			val = append(val, v.obj)
		}
	}
	fmt.Fprintf(bw, " obj: %s\n", e.FormatExpr(ind, val))

	fmt.Fprintln(bw, "Subject To")
	for _, c := range e.rows {
		fmt.Fprintf(bw, " %s\n", e.FormatConstr(c))
	}
	if len(e.lazy) > 0 {
		fmt.Fprintln(bw, "Lazy Constraints")
		for _, c := range e.lazy {
			fmt.Fprintf(bw, " %s\n", e.FormatConstr(c))
		}
	}

	fmt.Fprintln(bw, "Bounds")
	var general, binary []string
	for _, v := range e.vars {
		switch v.vtype {
		case mip.Binary:
			binary = append(binary, v.name)
			continue
		case mip.Integer:
			general = append(general, v.name)
		}
		if math.IsInf(v.ub, 1) {
			fmt.Fprintf(bw, " %s >= %s\n", v.name, num(v.lb))
		} else {
			fmt.Fprintf(bw, " %s <= %s <= %s\n", num(v.lb), v.name, num(v.ub))
		}
	}
	if len(general) > 0 {
		fmt.Fprintln(bw, "General")
		for _, name := range general {
			fmt.Fprintf(bw, " %s\n", name)
		}
	}
	if len(binary) > 0 {
		fmt.Fprintln(bw, "Binary")
		for _, name := range binary {
			fmt.Fprintf(bw, " %s\n", name)
		}
	}
	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

// FormatConstr renders c as "name: a x + b y <= r".
func (e *Engine) FormatConstr(c mip.Constr) string {
	s := e.FormatExpr(c.Ind, c.Val) + " " + c.Sense.String() + " " + num(c.Rhs)
	if c.Name != "" {
		s = c.Name + ": " + s
	}
	return s
}

func (e *Engine) FormatExpr(ind []int, val []float64) string {
	if len(ind) == 0 {
		return "0"
	}
	s := ""
	for k, j := range ind {
		v := val[k]
		switch {
		case k == 0 && v < 0:
			s += "- "
		case k > 0 && v < 0:
			s += " - "
		case k > 0:
			s += " + "
		}
		if a := math.Abs(v); a != 1 {
			s += num(a) + " "
		}
		s += e.VarName(j)
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
