package cvrp

import (
	"strconv"
	"strings"
)

// ArrayStringFlags collects a repeated string flag.
type ArrayStringFlags []string

func (i *ArrayStringFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *ArrayStringFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// ArrayIntFlags collects a repeated int flag.
type ArrayIntFlags []int

func (i *ArrayIntFlags) String() string {
	s := make([]string, len(*i))
	for k, v := range *i {
		s[k] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}

func (i *ArrayIntFlags) Set(value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*i = append(*i, v)
	return nil
}
