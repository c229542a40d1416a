// Package calc implements the four-function calculator offered alongside the
// point-of-sale screen. It is a pure state machine: feed it key presses, read
// the display.
package calc

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorDisplay is shown after an undefined operation (division by zero).
// In the error state every key except Clear and CE is ignored.
const ErrorDisplay = "Error"

// Calculator holds a per-session calculator state. The zero value is not
// ready to use; call New.
type Calculator struct {
	Display  string   `json:"display"`
	Pending  *float64 `json:"pending,omitempty"`
	Operator string   `json:"operator,omitempty"`
	Fresh    bool     `json:"awaitingFreshInput"`
}

// New returns a cleared calculator showing "0".
func New() *Calculator {
	return &Calculator{Display: "0"}
}

// IsError reports whether the calculator is in the error state.
func (c *Calculator) IsError() bool {
	return c.Display == ErrorDisplay
}

// Press applies a single key: digits 0-9, ".", the operators "+", "-", "*",
// "/", "=", "C" (clear) and "CE" (clear entry). Unknown keys are rejected.
func (c *Calculator) Press(key string) error {
	switch {
	case key == "C":
		c.clear()
	case key == "CE":
		c.Display = "0"
	case c.IsError():
		// Only Clear and CE leave the error state.
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		c.inputDigit(key)
	case key == ".":
		c.inputDecimal()
	case key == "=":
		c.equals()
	case key == "+" || key == "-" || key == "*" || key == "/":
		c.inputOperator(key)
	default:
		return fmt.Errorf("unknown calculator key %q", key)
	}
	return nil
}

func (c *Calculator) clear() {
	c.Display = "0"
	c.Pending = nil
	c.Operator = ""
	c.Fresh = false
}

func (c *Calculator) inputDigit(digit string) {
	if c.Fresh {
		c.Display = digit
		c.Fresh = false
		return
	}
	if c.Display == "0" {
		c.Display = digit
		return
	}
	c.Display += digit
}

func (c *Calculator) inputDecimal() {
	if c.Fresh {
		c.Display = "0."
		c.Fresh = false
		return
	}
	if !strings.Contains(c.Display, ".") {
		c.Display += "."
	}
}

func (c *Calculator) inputOperator(op string) {
	value := c.current()

	if c.Pending != nil && c.Operator != "" {
		result, ok := apply(*c.Pending, value, c.Operator)
		if !ok {
			c.fail()
			return
		}
		c.Display = format(result)
		c.Pending = &result
	} else {
		c.Pending = &value
	}

	c.Operator = op
	c.Fresh = true
}

func (c *Calculator) equals() {
	if c.Pending == nil || c.Operator == "" {
		return
	}

	result, ok := apply(*c.Pending, c.current(), c.Operator)
	if !ok {
		c.fail()
		return
	}

	c.Display = format(result)
	c.Pending = nil
	c.Operator = ""
	c.Fresh = true
}

// fail enters the error state instead of propagating a non-finite value.
func (c *Calculator) fail() {
	c.Display = ErrorDisplay
	c.Pending = nil
	c.Operator = ""
	c.Fresh = false
}

func (c *Calculator) current() float64 {
	value, _ := strconv.ParseFloat(c.Display, 64)
	return value
}

// apply resolves a pending binary operation. The second result is false when
// the operation is undefined (division by zero).
func apply(a, b float64, op string) (float64, bool) {
	switch op {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		if b == 0 {
			return 0, false
		}
		return a / b, true
	default:
		return b, true
	}
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
