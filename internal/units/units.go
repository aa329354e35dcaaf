// Package units converts between millilitres and display units.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownUnit is returned by Parse for unsupported unit names.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit describes a display unit by its size in millilitres.
type Unit struct {
	Name   string
	Short  string
	PerML  float64 // millilitres per one unit
	Digits int     // decimals kept when displaying
}

var (
	Milliliter = Unit{Name: "milliliters", Short: "ml", PerML: 1, Digits: 0}
	Liter      = Unit{Name: "liters", Short: "l", PerML: 1000, Digits: 2}
	FluidOunce = Unit{Name: "fluid ounces", Short: "oz", PerML: 29.5735, Digits: 1}
	Cup        = Unit{Name: "cups", Short: "cup", PerML: 236.588, Digits: 1}
)

// All lists the supported units in display order.
func All() []Unit {
	return []Unit{Milliliter, Liter, FluidOunce, Cup}
}

var aliases = map[string]Unit{
	"ml":           Milliliter,
	"milliliter":   Milliliter,
	"milliliters":  Milliliter,
	"l":            Liter,
	"liter":        Liter,
	"liters":       Liter,
	"oz":           FluidOunce,
	"floz":         FluidOunce,
	"fl oz":        FluidOunce,
	"fluid ounce":  FluidOunce,
	"fluid ounces": FluidOunce,
	"ounce":        FluidOunce,
	"ounces":       FluidOunce,
	"cup":          Cup,
	"cups":         Cup,
}

// Parse resolves a unit name or alias, case-insensitively.
func Parse(name string) (Unit, error) {
	u, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return u, nil
}

// FromML converts millilitres to this unit, rounded for display.
func (u Unit) FromML(ml float64) float64 {
	return round(ml/u.PerML, u.Digits)
}

// ToML converts a value in this unit to millilitres.
func (u Unit) ToML(v float64) float64 {
	return v * u.PerML
}

// Format renders ml as "<value> <short>" in this unit.
func (u Unit) Format(ml float64) string {
	return strconv.FormatFloat(u.FromML(ml), 'f', -1, 64) + " " + u.Short
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
