package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
)

// inputBool is a boolean flag that reads an empty value as false. The Actions
// runner exports every declared input, so unset optional inputs arrive as
// INPUT_<NAME>="".
type inputBool bool

func (b inputBool) IsBool() bool { return true }

func (b *inputBool) Decode(ctx *kong.DecodeContext) error {
	if ctx.Scan.Peek().Type != kong.FlagValueToken {
		*b = true
		return nil
	}

	token := ctx.Scan.Pop()
	switch v := token.Value.(type) {
	case bool:
		*b = inputBool(v)
		return nil
	case string:
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "":
			*b = false
			return nil
		case "yes":
			*b = true
			return nil
		case "no":
			*b = false
			return nil
		}

		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("bool value must be true, false, yes, no or empty but got %q", v)
		}
		*b = inputBool(parsed)
		return nil
	default:
		return fmt.Errorf("expected bool but got %q (%T)", token.Value, token.Value)
	}
}
