package soc

// Config is the resolved SoC build-option map handed to the external builder.
// Every key present in a board's defaults or implied by a capability appears
// exactly once; later resolution steps win on collision.
type Config map[string]any

// Int reads an integer-valued option, tolerating untyped literals from the
// board tables. Missing or non-numeric values read as zero.
func (c Config) Int(key string) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint:
		return int(v)
	default:
		return 0
	}
}

// Bool reads a boolean option; missing keys read as false.
func (c Config) Bool(key string) bool {
	v, _ := c[key].(bool)
	return v
}

// String reads a string option; missing keys read as "".
func (c Config) String(key string) string {
	v, _ := c[key].(string)
	return v
}
