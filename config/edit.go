package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/where"
)

// ErrUnknownKey is returned for keys that are not registered in Default.
var ErrUnknownKey = errors.New("unknown key")

// Lookup returns the registered field for k.
func Lookup(k string) (Field, error) {
	field, ok := Default[k]
	if !ok {
		return Field{}, fmt.Errorf("%w %s", ErrUnknownKey, k)
	}
	return field, nil
}

// Parse converts command-line values to the type of the field's default.
func (f *Field) Parse(values []string) (any, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: no value given", f.Key)
	}

	switch f.Value.(type) {
	case string:
		return values[0], nil
	case int:
		n, err := strconv.Atoi(values[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", f.Key, values[0])
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", f.Key, values[0])
		}
		return b, nil
	case []string:
		return values, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %s", f.Key, f.typeName())
	}
}

// Path is the location of the config file, whether or not it exists.
func Path() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// Write persists the in-memory configuration, creating the file when missing.
func Write() error {
	err := viper.WriteConfig()

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfigAs(Path())
	}
	return err
}
