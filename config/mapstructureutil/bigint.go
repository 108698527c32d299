package mapstructureutil

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// BigIntDecodeFunc returns a DecodeHookFunc that converts decimal or 0x
// prefixed hex strings and integers to *big.Int.
func BigIntDecodeFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(&big.Int{}) && t != reflect.TypeOf(big.Int{}) {
			return data, nil
		}
		var v *big.Int
		switch raw := data.(type) {
		case string:
			s := strings.ReplaceAll(strings.TrimSpace(raw), "_", "")
			var ok bool
			v, ok = new(big.Int).SetString(s, 0)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", raw)
			}
		case int:
			v = big.NewInt(int64(raw))
		case int64:
			v = big.NewInt(raw)
		case uint64:
			v = new(big.Int).SetUint64(raw)
		case float64:
			if raw != float64(int64(raw)) {
				return nil, fmt.Errorf("non integer value %v", raw)
			}
			v = big.NewInt(int64(raw))
		default:
			return data, nil
		}
		if t.Kind() == reflect.Struct {
			return *v, nil
		}
		return v, nil
	}
}
