package mapstructureutil

import (
	"math/big"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/require"
)

func TestBigIntDecodeFunc(t *testing.T) {
	type target struct {
		Balance *big.Int `mapstructure:"balance"`
	}
	for _, tc := range []struct {
		desc   string
		input  any
		expect string
		err    bool
	}{
		{desc: "decimal string", input: "340282366920938463463374607431768211455", expect: "340282366920938463463374607431768211455"},
		{desc: "hex string", input: "0xff", expect: "255"},
		{desc: "underscores", input: "1_000_000", expect: "1000000"},
		{desc: "int", input: 42, expect: "42"},
		{desc: "int64", input: int64(-7), expect: "-7"},
		{desc: "float", input: float64(100), expect: "100"},
		{desc: "fraction", input: 1.5, err: true},
		{desc: "garbage", input: "ten", err: true},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			var out target
			decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				DecodeHook: BigIntDecodeFunc(),
				Result:     &out,
			})
			require.NoError(t, err)
			err = decoder.Decode(map[string]any{"balance": tc.input})
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, out.Balance.String())
		})
	}
}
