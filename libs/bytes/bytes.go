package bytes

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// HexBytes renders binary identifiers (hashes, public keys) as uppercase hex
// in JSON and in log lines.
type HexBytes []byte

// MarshalText encodes a HexBytes value as uppercase hexadecimal digits.
// This method is used by json.Marshal.
func (bz HexBytes) MarshalText() ([]byte, error) {
	return []byte(bz.String()), nil
}

// UnmarshalText accepts hex, the format MarshalText produces, and falls back
// to standard base64.
func (bz *HexBytes) UnmarshalText(data []byte) error {
	input := string(data)
	if input == "" || input == "null" {
		return nil
	}
	dec, err := hex.DecodeString(input)
	if err != nil {
		dec, err = base64.StdEncoding.DecodeString(input)
		if err != nil {
			return err
		}
	}
	*bz = HexBytes(dec)
	return nil
}

// ShortString returns the first three bytes in hex, or an empty string for
// shorter values.
func (bz HexBytes) ShortString() string {
	if len(bz) < 3 {
		return ""
	}
	return bz[:3].String()
}

func (bz HexBytes) String() string {
	return strings.ToUpper(hex.EncodeToString(bz))
}
