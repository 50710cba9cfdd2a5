// Package catalog holds the static set of instruments the service projects.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/etfcast/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// ErrUnknownInstrument is returned for symbols outside the catalog.
var ErrUnknownInstrument = errors.New("unknown instrument")

// Instrument is a tradable fund.
type Instrument struct {
	Symbol      string `yaml:"symbol" json:"symbol"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Type        string `yaml:"-" json:"type"`
}

// InstrumentType groups instruments tracking similar markets.
type InstrumentType struct {
	ID             string       `yaml:"id" json:"id"`
	Name           string       `yaml:"name" json:"name"`
	FallbackGrowth *float64     `yaml:"fallback_growth" json:"fallback_growth,omitempty"`
	Instruments    []Instrument `yaml:"instruments" json:"instruments"`
}

type document struct {
	DefaultFallbackGrowth float64          `yaml:"default_fallback_growth"`
	Types                 []InstrumentType `yaml:"types"`
}

// Catalog indexes instruments by symbol.
type Catalog struct {
	types           []InstrumentType
	bySymbol        map[string]Instrument
	fallbackByType  map[string]float64
	defaultFallback float64
}

// Load parses the catalog compiled into the binary.
func Load() (*Catalog, error) {
	data, err := embedded.Instruments()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Symbols must be unique across types.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Types) == 0 {
		return nil, fmt.Errorf("catalog has no instrument types")
	}

	c := &Catalog{
		types:           make([]InstrumentType, 0, len(doc.Types)),
		bySymbol:        make(map[string]Instrument),
		fallbackByType:  make(map[string]float64),
		defaultFallback: doc.DefaultFallbackGrowth,
	}

	for _, t := range doc.Types {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog type %q has no id", t.Name)
		}
		if t.FallbackGrowth != nil {
			c.fallbackByType[t.ID] = *t.FallbackGrowth
		}
		for i, inst := range t.Instruments {
			inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
			if inst.Symbol == "" {
				return nil, fmt.Errorf("catalog type %s has an instrument without symbol", t.ID)
			}
			if _, dup := c.bySymbol[inst.Symbol]; dup {
				return nil, fmt.Errorf("duplicate catalog symbol %s", inst.Symbol)
			}
			inst.Type = t.ID
			t.Instruments[i] = inst
			c.bySymbol[inst.Symbol] = inst
		}
		c.types = append(c.types, t)
	}

	return c, nil
}

// Types returns instrument types in catalog order.
func (c *Catalog) Types() []InstrumentType {
	out := make([]InstrumentType, len(c.types))
	for i, t := range c.types {
		t.Instruments = append([]Instrument(nil), t.Instruments...)
		out[i] = t
	}
	return out
}

// Lookup finds an instrument by symbol, case-insensitively.
func (c *Catalog) Lookup(symbol string) (Instrument, error) {
	inst, ok := c.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %s", ErrUnknownInstrument, symbol)
	}
	return inst, nil
}

// Symbols returns every symbol in catalog order.
func (c *Catalog) Symbols() []string {
	symbols := make([]string, 0, len(c.bySymbol))
	for _, t := range c.types {
		for _, inst := range t.Instruments {
			symbols = append(symbols, inst.Symbol)
		}
	}
	return symbols
}

// FallbackGrowthRate is the annual growth percent assumed for symbol when its
// history gives no positive estimate.
func (c *Catalog) FallbackGrowthRate(symbol string) float64 {
	inst, err := c.Lookup(symbol)
	if err != nil {
		return c.defaultFallback
	}
	if rate, ok := c.fallbackByType[inst.Type]; ok {
		return rate
	}
	return c.defaultFallback
}

// SelectGrowthRate prefers a positive estimated growth and otherwise falls
// back to the instrument's type rate.
func (c *Catalog) SelectGrowthRate(symbol string, estimated float64) float64 {
	if estimated > 0 {
		return estimated
	}
	return c.FallbackGrowthRate(symbol)
}
