package bytes

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexBytesJSON(t *testing.T) {
	type wrapper struct {
		Data HexBytes `json:"data"`
	}

	bz, err := json.Marshal(wrapper{Data: HexBytes{0x0a, 0xbc}})
	require.NoError(t, err)
	assert.Equal(t, `{"data":"0ABC"}`, string(bz))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"data":"0abc"}`), &w))
	assert.Equal(t, HexBytes{0x0a, 0xbc}, w.Data)

	// base64 is accepted as a fallback
	require.NoError(t, json.Unmarshal([]byte(`{"data":"Crw="}`), &w))
	assert.Equal(t, HexBytes{0x0a, 0xbc}, w.Data)
}

func TestHexBytesStrings(t *testing.T) {
	bz := HexBytes{0xde, 0xad, 0xbe, 0xef}
	assert.Equal(t, "DEADBEEF", bz.String())
	assert.Equal(t, "DEADBE", bz.ShortString())
	assert.Equal(t, "", HexBytes{0x01}.ShortString())
	assert.Equal(t, "DEADBEEF", fmt.Sprintf("%v", bz))

	var empty HexBytes
	require.NoError(t, empty.UnmarshalText(nil))
	assert.Nil(t, empty)
	assert.Error(t, empty.UnmarshalText([]byte("not hex!")))
}
