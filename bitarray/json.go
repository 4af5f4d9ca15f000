package bitarray

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// jsonForm is the interchange shape {"len":<bits>,"arr":<std base64>}.
type jsonForm struct {
	Len *int64  `json:"len"`
	Arr *string `json:"arr"`
}

func (b *BitArray) MarshalJSON() ([]byte, error) {
	n := int64(b.length)
	arr := base64.StdEncoding.EncodeToString(b.data)
	return json.Marshal(jsonForm{Len: &n, Arr: &arr})
}

// UnmarshalJSON replaces b with the decoded array. On error b is unchanged.
func (b *BitArray) UnmarshalJSON(data []byte) error {
	decoded, err := FromJSON(data)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// FromJSON decodes the json form produced by MarshalJSON.
func FromJSON(data []byte) (*BitArray, error) {
	var form jsonForm
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if form.Len == nil || form.Arr == nil {
		return nil, fmt.Errorf("%w: len and arr are required", ErrBadJSON)
	}
	raw, err := base64.StdEncoding.DecodeString(*form.Arr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	n := *form.Len
	if n != int64(int(n)) {
		return nil, fmt.Errorf("%w: len %d", ErrBadJSON, n)
	}
	return FromBytes(raw, int(n))
}
