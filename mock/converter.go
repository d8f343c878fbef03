package mock

import "github.com/fwojciec/serpblock"

var _ serpblock.Converter = (*Converter)(nil)

// Converter is a mock implementation of serpblock.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
